package models

import (
	"encoding/json"
	"sort"
)

// NotFound is written in place of an empty email or number list.
const NotFound = "Not found"

// ContactRecord is the finalized per-root output.
type ContactRecord struct {
	Website string   `json:"website"`
	Emails  []string `json:"-"`
	Numbers []string `json:"-"`
}

type contactRecordJSON struct {
	Website string          `json:"website"`
	Emails  json.RawMessage `json:"emails"`
	Numbers json.RawMessage `json:"numbers"`
}

// NewContactRecord builds a record with sorted copies of the given sets.
func NewContactRecord(website string, emails, numbers []string) ContactRecord {
	return ContactRecord{
		Website: website,
		Emails:  sortedCopy(emails),
		Numbers: sortedCopy(numbers),
	}
}

// Empty reports whether nothing was found for the root.
func (r ContactRecord) Empty() bool {
	return len(r.Emails) == 0 && len(r.Numbers) == 0
}

func (r ContactRecord) MarshalJSON() ([]byte, error) {
	emails, err := marshalSet(r.Emails)
	if err != nil {
		return nil, err
	}
	numbers, err := marshalSet(r.Numbers)
	if err != nil {
		return nil, err
	}
	return json.Marshal(contactRecordJSON{Website: r.Website, Emails: emails, Numbers: numbers})
}

func (r *ContactRecord) UnmarshalJSON(data []byte) error {
	var raw contactRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	emails, err := unmarshalSet(raw.Emails)
	if err != nil {
		return err
	}
	numbers, err := unmarshalSet(raw.Numbers)
	if err != nil {
		return err
	}
	r.Website = raw.Website
	r.Emails = emails
	r.Numbers = numbers
	return nil
}

func marshalSet(values []string) (json.RawMessage, error) {
	if len(values) == 0 {
		return json.Marshal(NotFound)
	}
	return json.Marshal(values)
}

func unmarshalSet(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var sentinel string
	if err := json.Unmarshal(raw, &sentinel); err == nil {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func sortedCopy(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
