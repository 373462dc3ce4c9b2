package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func paymentEntry(id, employeeID string, amount int64, periodStart, paidAt, createdAt time.Time) *LedgerEntry {
	return &LedgerEntry{
		ID:           id,
		Kind:         EntryKindPayment,
		ObligationID: id,
		EmployeeID:   employeeID,
		PeriodStart:  periodStart,
		Amount:       decimal.NewFromInt(amount),
		PaidAt:       paidAt,
		CreatedAt:    createdAt,
	}
}

func TestProjectBatches_GroupsByPeriodAndPaidDate(t *testing.T) {
	t.Parallel()

	period := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)

	entries := []*LedgerEntry{
		paymentEntry("ob-1", "emp-1", 1000, period, paidAt, created),
		paymentEntry("ob-2", "emp-2", 900, period, paidAt, created.Add(time.Minute)),
		paymentEntry("ob-3", "emp-1", 1000, period.AddDate(0, 0, 7), paidAt.AddDate(0, 0, 7), created.AddDate(0, 0, 7)),
	}

	batches := ProjectBatches(entries, nil, BatchFilter{})
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}

	// 新しい支払日が先頭に来る。
	if !batches[0].PaidAt.Equal(paidAt.AddDate(0, 0, 7)) {
		t.Fatalf("expected newest paid date first, got %v", batches[0].PaidAt)
	}

	week1 := batches[1]
	if len(week1.Entries) != 2 {
		t.Fatalf("expected 2 entries in first week batch, got %d", len(week1.Entries))
	}
	if !week1.Total.Equal(decimal.NewFromInt(1900)) {
		t.Fatalf("expected total 1900, got %s", week1.Total)
	}
	if week1.EmployeeCount != 2 {
		t.Fatalf("expected 2 distinct employees, got %d", week1.EmployeeCount)
	}
}

func TestProjectBatches_ReversalIsSingletonBatch(t *testing.T) {
	t.Parallel()

	period := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)

	entries := []*LedgerEntry{
		paymentEntry("ob-1", "emp-1", 1000, period, paidAt, created),
		{
			ID:                "rev-1",
			Kind:              EntryKindReversal,
			ObligationID:      "ob-1",
			EmployeeID:        "emp-1",
			PeriodStart:       period,
			Amount:            decimal.NewFromInt(-1000),
			ReversesPaymentID: "ob-1",
			Reason:            "bank error",
			PaidAt:            paidAt,
			CreatedAt:         created.Add(time.Hour),
		},
	}

	batches := ProjectBatches(entries, nil, BatchFilter{})
	if len(batches) != 2 {
		t.Fatalf("expected reversal isolated from its payment, got %d batches", len(batches))
	}

	// 同じ支払日の場合は作成時刻が新しい方（取消）が先頭。
	reversal := batches[0]
	if len(reversal.Entries) != 1 || reversal.Entries[0].Kind != EntryKindReversal {
		t.Fatalf("expected singleton reversal batch first, got %+v", reversal.Entries)
	}
	if !reversal.Total.Equal(decimal.NewFromInt(-1000)) {
		t.Fatalf("expected reversal total -1000, got %s", reversal.Total)
	}
	if len(reversal.Reasons) != 1 || reversal.Reasons[0] != "bank error" {
		t.Fatalf("expected reason preserved, got %+v", reversal.Reasons)
	}
}

func TestProjectBatches_SynthesizesEntriesForLegacyPaidObligations(t *testing.T) {
	t.Parallel()

	period := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	paid := []*Obligation{
		{
			ID:          "ob-legacy",
			EmployeeID:  "emp-9",
			PeriodStart: period,
			PeriodEnd:   period.AddDate(0, 0, 6),
			Amount:      decimal.NewFromInt(800),
			Status:      StatusPaid,
			PaidAt:      &paidAt,
			CreatedAt:   period,
		},
	}

	batches := ProjectBatches(nil, paid, BatchFilter{})
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch from legacy paid obligation, got %d", len(batches))
	}
	if !batches[0].Total.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected total 800, got %s", batches[0].Total)
	}
}

func TestProjectBatches_Filter(t *testing.T) {
	t.Parallel()

	period := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	jan12 := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	jan19 := time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)

	entries := []*LedgerEntry{
		paymentEntry("ob-1", "emp-1", 1000, period, jan12, jan12),
		paymentEntry("ob-2", "emp-2", 900, period, jan12, jan12),
		paymentEntry("ob-3", "emp-1", 1000, period.AddDate(0, 0, 7), jan19, jan19),
	}

	byEmployee := ProjectBatches(entries, nil, BatchFilter{EmployeeID: "emp-1"})
	total := 0
	for _, b := range byEmployee {
		total += len(b.Entries)
	}
	if total != 2 {
		t.Fatalf("expected 2 entries for emp-1, got %d", total)
	}

	from := jan19
	byDate := ProjectBatches(entries, nil, BatchFilter{From: &from})
	if len(byDate) != 1 || !byDate[0].PaidAt.Equal(jan19) {
		t.Fatalf("expected only the jan 19 batch, got %+v", byDate)
	}
}

func TestProjectBatches_DeterministicProjection(t *testing.T) {
	t.Parallel()

	period := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	entries := []*LedgerEntry{
		paymentEntry("ob-1", "emp-1", 1000, period, paidAt, paidAt),
		paymentEntry("ob-2", "emp-2", 900, period, paidAt, paidAt.Add(time.Minute)),
	}

	first := ProjectBatches(entries, nil, BatchFilter{})
	second := ProjectBatches(entries, nil, BatchFilter{})

	if len(first) != len(second) {
		t.Fatalf("projection is not deterministic: %d vs %d batches", len(first), len(second))
	}
	for i := range first {
		if !first[i].Total.Equal(second[i].Total) || first[i].EmployeeCount != second[i].EmployeeCount {
			t.Fatalf("projection differs at batch %d", i)
		}
	}
}
