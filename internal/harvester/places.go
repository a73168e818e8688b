package harvester

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/httpclient"
	"github.com/rs/zerolog"
)

const (
	placesFieldMask   = "places.websiteUri,nextPageToken"
	placesMaxPageSize = 20
	placesMaxPages    = 5
)

type textSearchRequest struct {
	TextQuery string `json:"textQuery"`
	PageSize  int    `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

type textSearchResponse struct {
	Places []struct {
		WebsiteURI string `json:"websiteUri"`
	} `json:"places"`
	NextPageToken string `json:"nextPageToken"`
}

// PlacesHarvester queries the Places Text Search API and keeps the website of
// each place that has one.
type PlacesHarvester struct {
	endpoint string
	apiKey   string
	client   *httpclient.HTTPClient
	logger   zerolog.Logger
}

// NewPlacesHarvester creates a Places API harvester.
func NewPlacesHarvester(cfg config.HarvesterConfig, apiKey string, client *httpclient.HTTPClient, logger zerolog.Logger) *PlacesHarvester {
	endpoint := cfg.PlacesEndpoint
	if endpoint == "" {
		endpoint = config.DefaultHarvesterPlacesEndpoint
	}
	return &PlacesHarvester{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   client,
		logger:   logger.With().Str("component", "PlacesHarvester").Logger(),
	}
}

// Harvest pages through text search results until limit websites are found
// or the results run out.
func (h *PlacesHarvester) Harvest(ctx context.Context, query string, limit int) ([]string, error) {
	if query == "" {
		return nil, errorwrapper.NewValidationError("query", query, "query must not be empty")
	}

	found := newCollector(limit)
	token := ""
	for page := 0; page < placesMaxPages && !found.full(); page++ {
		resp, err := h.search(ctx, query, token, limit)
		if err != nil {
			if len(found.urls) > 0 {
				h.logger.Warn().Err(err).Int("collected", len(found.urls)).Msg("Places search stopped early")
				break
			}
			return nil, err
		}
		for _, p := range resp.Places {
			found.add(p.WebsiteURI)
		}
		h.logger.Debug().Int("page", page).Int("places", len(resp.Places)).Int("collected", len(found.urls)).Msg("Places page processed")
		if resp.NextPageToken == "" {
			break
		}
		token = resp.NextPageToken
	}

	h.logger.Info().Str("query", query).Int("websites", len(found.urls)).Msg("Places harvest completed")
	return found.urls, nil
}

func (h *PlacesHarvester) search(ctx context.Context, query, token string, limit int) (*textSearchResponse, error) {
	pageSize := placesMaxPageSize
	if limit > 0 && limit < pageSize {
		pageSize = limit
	}
	body, err := json.Marshal(textSearchRequest{TextQuery: query, PageSize: pageSize, PageToken: token})
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to marshal places request")
	}

	resp, err := h.client.Do(&httpclient.HTTPRequest{
		URL:    h.endpoint,
		Method: http.MethodPost,
		Headers: map[string]string{
			"Content-Type":     "application/json",
			"X-Goog-Api-Key":   h.apiKey,
			"X-Goog-FieldMask": placesFieldMask,
		},
		Body:    bytes.NewReader(body),
		Context: ctx,
	})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, string(resp.Body), h.endpoint)
	}

	var out textSearchResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to decode places response")
	}
	return &out, nil
}
