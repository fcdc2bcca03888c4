package source

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iwvelando/premium-dashboard/internal/period"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLite stores period records in a SQLite database.
type SQLite struct {
	Path   string
	logger *zap.Logger
}

// NewSQLite creates a SQLite source with the given logger.
func NewSQLite(path string, logger *zap.Logger) *SQLite {
	return &SQLite{Path: path, logger: orNop(logger)}
}

func (s *SQLite) open(ctx context.Context) (*sql.DB, error) {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", s.Path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// Import replaces the stored records with the given ones.
func (s *SQLite) Import(ctx context.Context, records []period.Record) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import failed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM business_line_entries; DELETE FROM periods;`); err != nil {
		return fmt.Errorf("clear periods failed: %w", err)
	}

	for _, r := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO periods (period_id, period_label, comparison_period_id_mom, comparison_period_id_yoy, total_premium_written_overall)
			VALUES (?, ?, ?, ?, ?)`,
			r.PeriodID, r.PeriodLabel, nullString(r.ComparisonPeriodIDMoM), nullString(r.ComparisonPeriodIDYoY),
			r.OverallTotals.TotalPremiumWrittenOverall,
		); err != nil {
			return fmt.Errorf("insert period %s failed: %w", r.PeriodID, err)
		}
		for i, e := range r.BusinessLineEntries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO business_line_entries (
					period_id, position, business_type,
					premium_written, premium_earned, total_loss_amount, expense_amount_raw, claim_count, policy_count_earned,
					avg_premium_per_policy, avg_loss_per_case, avg_commercial_index, loss_ratio, expense_ratio, variable_cost_ratio, claim_frequency
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.PeriodID, i, e.BusinessType,
				e.PremiumWritten, e.PremiumEarned, e.TotalLossAmount, e.ExpenseAmountRaw, e.ClaimCount, e.PolicyCountEarned,
				nullFloat(e.AvgPremiumPerPolicy), nullFloat(e.AvgLossPerCase), nullFloat(e.AvgCommercialIndex),
				nullFloat(e.LossRatio), nullFloat(e.ExpenseRatio), nullFloat(e.VariableCostRatio), nullFloat(e.ClaimFrequency),
			); err != nil {
				return fmt.Errorf("insert entry %s/%s failed: %w", r.PeriodID, e.BusinessType, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import failed: %w", err)
	}
	orNop(s.logger).Info("periods imported",
		zap.String("op", "source.SQLite.Import"),
		zap.String("path", s.Path),
		zap.Int("periods", len(records)),
	)
	return nil
}

// Load reads every period with its entries.
func (s *SQLite) Load(ctx context.Context) ([]period.Record, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT period_id, period_label, comparison_period_id_mom, comparison_period_id_yoy, total_premium_written_overall
		FROM periods
		ORDER BY period_id`)
	if err != nil {
		return nil, fmt.Errorf("query periods failed: %w", err)
	}
	defer rows.Close()

	var records []period.Record
	index := make(map[string]int)
	for rows.Next() {
		var (
			r        period.Record
			mom, yoy sql.NullString
		)
		if err := rows.Scan(&r.PeriodID, &r.PeriodLabel, &mom, &yoy, &r.OverallTotals.TotalPremiumWrittenOverall); err != nil {
			return nil, fmt.Errorf("scan period failed: %w", err)
		}
		r.ComparisonPeriodIDMoM = stringPtr(mom)
		r.ComparisonPeriodIDYoY = stringPtr(yoy)
		index[r.PeriodID] = len(records)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods failed: %w", err)
	}

	entryRows, err := db.QueryContext(ctx, `
		SELECT period_id, business_type,
			premium_written, premium_earned, total_loss_amount, expense_amount_raw, claim_count, policy_count_earned,
			avg_premium_per_policy, avg_loss_per_case, avg_commercial_index, loss_ratio, expense_ratio, variable_cost_ratio, claim_frequency
		FROM business_line_entries
		ORDER BY period_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query entries failed: %w", err)
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var (
			periodID                                 string
			e                                        period.Entry
			avgPremium, avgLoss, index3, lr, er, vcr sql.NullFloat64
			frequency                                sql.NullFloat64
		)
		if err := entryRows.Scan(&periodID, &e.BusinessType,
			&e.PremiumWritten, &e.PremiumEarned, &e.TotalLossAmount, &e.ExpenseAmountRaw, &e.ClaimCount, &e.PolicyCountEarned,
			&avgPremium, &avgLoss, &index3, &lr, &er, &vcr, &frequency,
		); err != nil {
			return nil, fmt.Errorf("scan entry failed: %w", err)
		}
		e.AvgPremiumPerPolicy = floatPtr(avgPremium)
		e.AvgLossPerCase = floatPtr(avgLoss)
		e.AvgCommercialIndex = floatPtr(index3)
		e.LossRatio = floatPtr(lr)
		e.ExpenseRatio = floatPtr(er)
		e.VariableCostRatio = floatPtr(vcr)
		e.ClaimFrequency = floatPtr(frequency)

		i, ok := index[periodID]
		if !ok {
			continue
		}
		records[i].BusinessLineEntries = append(records[i].BusinessLineEntries, e)
	}
	if err := entryRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries failed: %w", err)
	}

	orNop(s.logger).Info("period data loaded",
		zap.String("op", "source.SQLite.Load"),
		zap.String("path", s.Path),
		zap.Int("periods", len(records)),
	)
	return records, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
