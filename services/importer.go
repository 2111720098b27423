package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const maxImportPayload = 10 << 20

// ImportError describes one record that could not be imported.
type ImportError struct {
	Index  int    `json:"index"`
	Record string `json:"job"`
	Error  string `json:"error"`
}

type ImportResult struct {
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	SkippedCount int           `json:"skippedCount"`
	Errors       []ImportError `json:"errors"`
}

// Importer feeds externally sourced job records into the catalog. Records
// are processed one by one and a failing record never stops the batch.
type Importer struct {
	catalog *Catalog
	client  *http.Client
	log     zerolog.Logger
}

func NewImporter(catalog *Catalog, fetchTimeout time.Duration, logger zerolog.Logger) *Importer {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &Importer{
		catalog: catalog,
		client:  &http.Client{Timeout: fetchTimeout},
		log:     logger.With().Str("component", "importer").Logger(),
	}
}

// ImportRecords imports raw JSON records. A record whose (title, location)
// already exists is skipped, not failed.
func (im *Importer) ImportRecords(ctx context.Context, records []json.RawMessage, createdBy uint) ImportResult {
	result := ImportResult{Errors: []ImportError{}}
	for i, raw := range records {
		title, err := im.importOne(ctx, raw, createdBy)
		switch {
		case errors.Is(err, errSkipped):
			result.SkippedCount++
		case err != nil:
			result.FailureCount++
			result.Errors = append(result.Errors, ImportError{Index: i, Record: title, Error: err.Error()})
		default:
			result.SuccessCount++
		}
	}
	im.log.Info().
		Int("success", result.SuccessCount).
		Int("failed", result.FailureCount).
		Int("skipped", result.SkippedCount).
		Uint("created_by", createdBy).
		Msg("import finished")
	return result
}

var errSkipped = errors.New("job already exists")

func (im *Importer) importOne(ctx context.Context, raw json.RawMessage, createdBy uint) (string, error) {
	var in JobInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return "", validationErrorf("record is not a job object: %v", err)
	}
	if err := ctx.Err(); err != nil {
		return in.Title, err
	}

	exists, err := im.catalog.ExistsByTitleLocation(ctx, strings.TrimSpace(in.Title), strings.TrimSpace(in.Location))
	if err != nil {
		return in.Title, err
	}
	if exists {
		return in.Title, errSkipped
	}

	if _, err := im.catalog.Create(ctx, in, createdBy); err != nil {
		return in.Title, err
	}
	return in.Title, nil
}

// FetchRecords downloads a JSON document and extracts its job records.
func (im *Importer) FetchRecords(ctx context.Context, url string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImportPayload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	records, err := ExtractRecords(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return records, nil
}

func (im *Importer) ImportFromURL(ctx context.Context, url string, createdBy uint) (ImportResult, error) {
	records, err := im.FetchRecords(ctx, url)
	if err != nil {
		im.log.Warn().Err(err).Str("url", url).Msg("import fetch failed")
		return ImportResult{}, err
	}
	return im.ImportRecords(ctx, records, createdBy), nil
}

// ExtractRecords accepts either {"jobs": [...]} or a bare array.
func ExtractRecords(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty payload")
	}

	if data[0] == '{' {
		var envelope struct {
			Jobs json.RawMessage `json:"jobs"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("parse payload: %w", err)
		}
		if len(envelope.Jobs) == 0 || string(envelope.Jobs) == "null" {
			return nil, errors.New("payload has no jobs array")
		}
		data = envelope.Jobs
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse job array: %w", err)
	}
	return records, nil
}

// ParseRecordFile reads a hand-edited import file. Comments and trailing
// commas are allowed.
func ParseRecordFile(data []byte) ([]json.RawMessage, error) {
	var doc any
	if err := json5.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize import file: %w", err)
	}
	return ExtractRecords(normalized)
}
