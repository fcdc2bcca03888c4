// Package testutil provides common fixtures for testing.
package testutil

import (
	"github.com/iwvelando/premium-dashboard/internal/period"
)

// Business lines used throughout the fixtures.
const (
	PrivateCar = "非营业个人客车"
	Truck      = "营业货车"
	Motorcycle = "摩托车"
)

// Entry builds an entry from the six base fields.
func Entry(businessType string, premiumWritten, premiumEarned, loss, expense, claims, policiesEarned float64) period.Entry {
	return period.Entry{
		BusinessType:      businessType,
		PremiumWritten:    premiumWritten,
		PremiumEarned:     premiumEarned,
		TotalLossAmount:   loss,
		ExpenseAmountRaw:  expense,
		ClaimCount:        claims,
		PolicyCountEarned: policiesEarned,
	}
}

// WithAvgPremium sets the precomputed average premium per policy.
func WithAvgPremium(e period.Entry, avg float64) period.Entry {
	e.AvgPremiumPerPolicy = period.Float(avg)
	return e
}

// Periods returns a small dataset: three consecutive weeks of 2025 and the
// year-ago week of the latest one. 2025-W23 links to W22 (MoM) and 2024-W23
// (YoY); W22 links to W21; 2024-W23 has no links.
func Periods() []period.Record {
	w21, w22, lastYear := "2025-W21", "2025-W22", "2024-W23"
	return []period.Record{
		{
			PeriodID:    "2024-W23",
			PeriodLabel: "2024年第23周",
			BusinessLineEntries: []period.Entry{
				WithAvgPremium(Entry(PrivateCar, 500, 250, 150, 80, 90, 1800), 2000),
				WithAvgPremium(Entry(Truck, 300, 120, 110, 45, 40, 600), 5000),
			},
			OverallTotals: period.OverallTotals{TotalPremiumWrittenOverall: 1000},
		},
		{
			PeriodID:    "2025-W21",
			PeriodLabel: "2025年第21周",
			BusinessLineEntries: []period.Entry{
				WithAvgPremium(Entry(PrivateCar, 400, 200, 120, 70, 80, 1600), 2000),
				WithAvgPremium(Entry(Truck, 250, 100, 90, 40, 30, 500), 5000),
			},
			OverallTotals: period.OverallTotals{TotalPremiumWrittenOverall: 800},
		},
		{
			PeriodID:              "2025-W22",
			PeriodLabel:           "2025年第22周",
			ComparisonPeriodIDMoM: &w21,
			BusinessLineEntries: []period.Entry{
				WithAvgPremium(Entry(PrivateCar, 500, 260, 150, 85, 100, 2000), 2000),
				WithAvgPremium(Entry(Truck, 300, 130, 100, 50, 36, 600), 5000),
				{BusinessType: "合计", PremiumWritten: 800},
			},
			OverallTotals: period.OverallTotals{TotalPremiumWrittenOverall: 1000},
		},
		{
			PeriodID:              "2025-W23",
			PeriodLabel:           "2025年第23周",
			ComparisonPeriodIDMoM: &w22,
			ComparisonPeriodIDYoY: &lastYear,
			BusinessLineEntries: []period.Entry{
				WithAvgPremium(Entry(PrivateCar, 700, 320, 180, 105, 120, 2400), 2000),
				WithAvgPremium(Entry(Truck, 350, 150, 130, 60, 44, 700), 5000),
				WithAvgPremium(Entry(Motorcycle, 50, 30, 5, 10, 4, 300), 500),
				{BusinessType: "合计", PremiumWritten: 1100},
			},
			OverallTotals: period.OverallTotals{TotalPremiumWrittenOverall: 2000},
		},
	}
}

// Dataset returns Periods indexed as a dataset.
func Dataset() *period.Dataset {
	ds, err := period.NewDataset(Periods())
	if err != nil {
		panic(err)
	}
	return ds
}
