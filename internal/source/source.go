// Package source loads period records from the supported data sources.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/iwvelando/premium-dashboard/internal/period"
	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"go.uber.org/zap"
)

// ErrUnknownSource is returned for an unsupported source kind.
var ErrUnknownSource = errors.New("unknown data source")

// Source loads every period record at once.
type Source interface {
	Load(ctx context.Context) ([]period.Record, error)
}

// New builds the source of the given kind.
func New(kind, path string, logger *zap.Logger) (Source, error) {
	switch kind {
	case "", constants.SourceJSON:
		return &JSONFile{Path: path, logger: orNop(logger)}, nil
	case constants.SourceSQLite:
		return &SQLite{Path: path, logger: orNop(logger)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSource, kind)
}

// LoadDataset loads the records and indexes them.
func LoadDataset(ctx context.Context, src Source) (*period.Dataset, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return period.NewDataset(records)
}

// JSONFile reads a JSON array of period records.
type JSONFile struct {
	Path   string
	logger *zap.Logger
}

// Load reads and decodes the file.
func (s *JSONFile) Load(ctx context.Context) ([]period.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read period data %s: %w", s.Path, err)
	}
	records, err := DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode period data %s: %w", s.Path, err)
	}
	orNop(s.logger).Info("period data loaded",
		zap.String("op", "source.JSONFile.Load"),
		zap.String("path", s.Path),
		zap.Int("periods", len(records)),
	)
	return records, nil
}

// DecodeJSON accepts either a bare array of records or an object wrapping
// them under "periods".
func DecodeJSON(data []byte) ([]period.Record, error) {
	var records []period.Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	var wrapped struct {
		Periods []period.Record `json:"periods"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Periods, nil
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
