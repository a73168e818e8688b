package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/aleister1102/contacthound/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

const (
	fileTimeLayout = "20060102_150405"
	singleSlug     = "single"
)

// ContactRow is the flat Parquet layout of a ContactRecord. Empty sets are
// stored as empty lists, not as the "Not found" marker.
type ContactRow struct {
	Website     string   `parquet:"website"`
	Emails      []string `parquet:"emails,list"`
	Numbers     []string `parquet:"numbers,list"`
	ScanTime    int64    `parquet:"scan_time"`
	SearchQuery *string  `parquet:"search_query,optional"`
}

// Result lists the files produced by one Write.
type Result struct {
	JSONPath    string
	ParquetPath string
	Records     int
}

// Writer persists the records of a run.
type Writer struct {
	cfg    config.OutputConfig
	logger zerolog.Logger
}

// Write stores records as an indented JSON array, plus a Parquet twin when
// enabled. query is the harvester query, empty for a single-URL run.
func (w *Writer) Write(records []models.ContactRecord, query string, now time.Time) (Result, error) {
	if err := os.MkdirAll(w.cfg.Dir, 0755); err != nil {
		return Result{}, errorwrapper.WrapError(err, fmt.Sprintf("failed to create output directory %s", w.cfg.Dir))
	}

	base := FileName(query, now)
	res := Result{
		JSONPath: filepath.Join(w.cfg.Dir, base+".json"),
		Records:  len(records),
	}

	if records == nil {
		records = []models.ContactRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return Result{}, errorwrapper.WrapError(err, "failed to encode records")
	}
	if err := os.WriteFile(res.JSONPath, data, 0644); err != nil {
		return Result{}, errorwrapper.WrapError(err, fmt.Sprintf("failed to write %s", res.JSONPath))
	}
	w.logger.Info().Str("path", res.JSONPath).Int("records", len(records)).Msg("Records saved")

	if w.cfg.Parquet {
		res.ParquetPath = filepath.Join(w.cfg.Dir, base+".parquet")
		if err := writeParquet(res.ParquetPath, ToRows(records, query, now)); err != nil {
			return res, err
		}
		w.logger.Info().Str("path", res.ParquetPath).Msg("Parquet twin saved")
	}
	return res, nil
}

// FileName returns contacts_[<slug>]_<YYYYMMDD_HHMMSS> without extension.
func FileName(query string, now time.Time) string {
	return fmt.Sprintf("contacts_[%s]_%s", Slug(query), now.Format(fileTimeLayout))
}

// Slug replaces every non-alphanumeric rune of query with an underscore.
// An empty query yields "single".
func Slug(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return singleSlug
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, query)
}

// ToRows flattens records into Parquet rows.
func ToRows(records []models.ContactRecord, query string, now time.Time) []ContactRow {
	var q *string
	if query != "" {
		q = &query
	}
	rows := make([]ContactRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, ContactRow{
			Website:     r.Website,
			Emails:      nonNil(r.Emails),
			Numbers:     nonNil(r.Numbers),
			ScanTime:    now.UnixMilli(),
			SearchQuery: q,
		})
	}
	return rows
}

// ReadParquet loads rows written by Write.
func ReadParquet(path string) ([]ContactRow, error) {
	rows, err := parquet.ReadFile[ContactRow](path)
	if err != nil {
		return nil, errorwrapper.WrapError(err, fmt.Sprintf("failed to read %s", path))
	}
	return rows, nil
}

func writeParquet(path string, rows []ContactRow) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errorwrapper.WrapError(err, fmt.Sprintf("failed to create %s", path))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errorwrapper.WrapError(cerr, "failed to close parquet file")
		}
	}()

	pw := parquet.NewGenericWriter[ContactRow](f, parquet.Compression(&parquet.Zstd))
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return errorwrapper.WrapError(err, "failed to write parquet rows")
	}
	if err := pw.Close(); err != nil {
		return errorwrapper.WrapError(err, "failed to finalize parquet file")
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// WriterBuilder builds a Writer with a fluent interface
type WriterBuilder struct {
	cfg    config.OutputConfig
	logger zerolog.Logger
}

// NewWriterBuilder creates a builder with default output configuration
func NewWriterBuilder(logger zerolog.Logger) *WriterBuilder {
	return &WriterBuilder{
		cfg:    config.NewDefaultOutputConfig(),
		logger: logger.With().Str("component", "OutputWriter").Logger(),
	}
}

// WithConfig sets the output configuration
func (b *WriterBuilder) WithConfig(cfg config.OutputConfig) *WriterBuilder {
	b.cfg = cfg
	return b
}

// Build creates the Writer
func (b *WriterBuilder) Build() (*Writer, error) {
	if strings.TrimSpace(b.cfg.Dir) == "" {
		return nil, errorwrapper.NewValidationError("dir", b.cfg.Dir, "output directory cannot be empty")
	}
	return &Writer{cfg: b.cfg, logger: b.logger}, nil
}
