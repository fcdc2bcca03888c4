// Package period defines the raw period records loaded from the data source
// and the helpers for selecting business lines out of them.
package period

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/samber/lo"
)

var (
	// ErrDuplicatePeriod is returned when two records share a period id.
	ErrDuplicatePeriod = errors.New("duplicate period id")

	// ErrDuplicateBusinessLine is returned when a record lists the same
	// business line twice.
	ErrDuplicateBusinessLine = errors.New("duplicate business line")
)

// Record holds one reporting period's raw facts.
type Record struct {
	PeriodID              string        `json:"periodId"`
	PeriodLabel           string        `json:"periodLabel"`
	ComparisonPeriodIDMoM *string       `json:"comparisonPeriodIdMoM"`
	ComparisonPeriodIDYoY *string       `json:"comparisonPeriodIdYoY"`
	BusinessLineEntries   []Entry       `json:"businessLineEntries"`
	OverallTotals         OverallTotals `json:"overallTotals"`
}

// OverallTotals holds portfolio-wide figures used for share-of-total calculations.
type OverallTotals struct {
	TotalPremiumWrittenOverall float64 `json:"totalPremiumWrittenOverall"`
}

// Entry is one business line's cumulative-to-date facts for a period.
//
// The six base fields are additive across business lines. The pointer fields
// are precomputed by the source for single-line display and must never be
// summed.
type Entry struct {
	BusinessType      string  `json:"businessType"`
	PremiumWritten    float64 `json:"premiumWritten"`
	PremiumEarned     float64 `json:"premiumEarned"`
	TotalLossAmount   float64 `json:"totalLossAmount"`
	ExpenseAmountRaw  float64 `json:"expenseAmountRaw"`
	ClaimCount        float64 `json:"claimCount"`
	PolicyCountEarned float64 `json:"policyCountEarned"`

	AvgPremiumPerPolicy *float64 `json:"avgPremiumPerPolicy,omitempty"`
	AvgLossPerCase      *float64 `json:"avgLossPerCase,omitempty"`
	AvgCommercialIndex  *float64 `json:"avgCommercialIndex,omitempty"`
	LossRatio           *float64 `json:"lossRatio,omitempty"`
	ExpenseRatio        *float64 `json:"expenseRatio,omitempty"`
	VariableCostRatio   *float64 `json:"variableCostRatio,omitempty"`
	ClaimFrequency      *float64 `json:"claimFrequency,omitempty"`
}

// Base returns a copy of the entry with every precomputed field cleared.
func (e Entry) Base() Entry {
	return Entry{
		BusinessType:      e.BusinessType,
		PremiumWritten:    e.PremiumWritten,
		PremiumEarned:     e.PremiumEarned,
		TotalLossAmount:   e.TotalLossAmount,
		ExpenseAmountRaw:  e.ExpenseAmountRaw,
		ClaimCount:        e.ClaimCount,
		PolicyCountEarned: e.PolicyCountEarned,
	}
}

// Sub returns the elementwise difference of the base fields. Ratio and
// average fields are left nil since they cannot be differenced.
func (e Entry) Sub(prior Entry) Entry {
	return Entry{
		BusinessType:      e.BusinessType,
		PremiumWritten:    e.PremiumWritten - prior.PremiumWritten,
		PremiumEarned:     e.PremiumEarned - prior.PremiumEarned,
		TotalLossAmount:   e.TotalLossAmount - prior.TotalLossAmount,
		ExpenseAmountRaw:  e.ExpenseAmountRaw - prior.ExpenseAmountRaw,
		ClaimCount:        e.ClaimCount - prior.ClaimCount,
		PolicyCountEarned: e.PolicyCountEarned - prior.PolicyCountEarned,
	}
}

// Float returns a pointer to v, for building entries with precomputed fields.
func Float(v float64) *float64 {
	return &v
}

// IsAggregateLabel reports whether a business type is a reserved total row.
func IsAggregateLabel(businessType string) bool {
	trimmed := strings.TrimSpace(businessType)
	return trimmed == constants.AggregateLabelZH || strings.EqualFold(trimmed, constants.AggregateLabelEN)
}

// IndividualEntries returns the entries that are real business lines.
func IndividualEntries(entries []Entry) []Entry {
	return lo.Filter(entries, func(e Entry, _ int) bool {
		return !IsAggregateLabel(e.BusinessType)
	})
}

// BusinessTypes lists the individual business lines of a record in source order.
func (r Record) BusinessTypes() []string {
	return lo.Map(IndividualEntries(r.BusinessLineEntries), func(e Entry, _ int) string {
		return e.BusinessType
	})
}

// SelectionNames trims a business type selection and drops blank names,
// aggregate labels and repeats.
func SelectionNames(selected []string) []string {
	return lo.Uniq(lo.FilterMap(selected, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != "" && !IsAggregateLabel(s)
	}))
}

// Select returns the individual entries whose business type is in selected.
// An empty selection, after SelectionNames, means every individual line.
func Select(entries []Entry, selected []string) []Entry {
	individual := IndividualEntries(entries)
	names := SelectionNames(selected)
	if len(names) == 0 {
		return individual
	}
	wanted := lo.Keyify(names)
	return lo.Filter(individual, func(e Entry, _ int) bool {
		_, ok := wanted[e.BusinessType]
		return ok
	})
}

// Index keys entries by business type.
func Index(entries []Entry) map[string]Entry {
	return lo.KeyBy(entries, func(e Entry) string { return e.BusinessType })
}

// Dataset is an immutable, id-indexed collection of period records.
type Dataset struct {
	records []Record
	byID    map[string]int
}

// NewDataset indexes records by id. Duplicate ids and business lines listed
// twice within one record are rejected.
func NewDataset(records []Record) (*Dataset, error) {
	ds := &Dataset{
		records: make([]Record, len(records)),
		byID:    make(map[string]int, len(records)),
	}
	copy(ds.records, records)
	for i, r := range ds.records {
		if _, exists := ds.byID[r.PeriodID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePeriod, r.PeriodID)
		}
		dups := lo.FindDuplicates(r.BusinessTypes())
		if len(dups) > 0 {
			return nil, fmt.Errorf("%w: %s in period %s", ErrDuplicateBusinessLine, strings.Join(dups, ", "), r.PeriodID)
		}
		ds.byID[r.PeriodID] = i
	}
	return ds, nil
}

// Find returns the record with the given id.
func (d *Dataset) Find(id string) (Record, bool) {
	if d == nil || id == "" {
		return Record{}, false
	}
	i, ok := d.byID[id]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}

// FindRef resolves an optional back-reference.
func (d *Dataset) FindRef(ref *string) (Record, bool) {
	if ref == nil {
		return Record{}, false
	}
	return d.Find(*ref)
}

// Records returns the records ordered by period id.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	out := make([]Record, len(d.records))
	copy(out, d.records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PeriodID < out[j].PeriodID })
	return out
}

// IDs returns the sorted period ids.
func (d *Dataset) IDs() []string {
	return lo.Map(d.Records(), func(r Record, _ int) string { return r.PeriodID })
}

// Labels maps period ids to their display labels.
func (d *Dataset) Labels() map[string]string {
	if d == nil {
		return map[string]string{}
	}
	return lo.SliceToMap(d.records, func(r Record) (string, string) {
		return r.PeriodID, r.PeriodLabel
	})
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}
