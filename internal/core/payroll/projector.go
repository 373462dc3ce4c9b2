package payroll

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BatchFilter は台帳の読み取り条件です。From/To は支払日に対する両端含みの範囲です。
type BatchFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
}

// ProjectBatches は台帳エントリと支払済みの支払予定を報告用のバッチへ射影します。
// 通常の支払は (期間開始日, 支払日) 単位でまとめられ、取消エントリは監査証跡を
// 細粒度に保つため常に単独のバッチになります。支払済みだが対応する台帳エントリを
// 持たない支払予定（台帳導入前のデータ）はエントリを合成して取り込みます。
// 同一入力からは常に同一の出力が得られる純粋な読み取り射影です。
func ProjectBatches(entries []*LedgerEntry, paid []*Obligation, filter BatchFilter) []*Batch {
	covered := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Kind == EntryKindPayment {
			covered[e.ObligationID] = struct{}{}
		}
	}

	all := make([]*LedgerEntry, 0, len(entries)+len(paid))
	all = append(all, entries...)
	for _, o := range paid {
		if _, ok := covered[o.ID]; ok {
			continue
		}
		if o.PaidAt == nil {
			continue
		}
		all = append(all, &LedgerEntry{
			ID:           o.ID,
			Kind:         EntryKindPayment,
			ObligationID: o.ID,
			EmployeeID:   o.EmployeeID,
			PeriodStart:  o.PeriodStart,
			Amount:       o.Amount,
			PaidAt:       *o.PaidAt,
			CreatedAt:    o.CreatedAt,
		})
	}

	groups := make(map[string]*Batch)
	var order []string
	for _, e := range all {
		if !matchesBatchFilter(e, filter) {
			continue
		}

		key := batchKey(e)
		batch, ok := groups[key]
		if !ok {
			batch = &Batch{
				PeriodStart: e.PeriodStart,
				PaidAt:      e.PaidAt,
				Total:       decimal.Zero,
			}
			groups[key] = batch
			order = append(order, key)
		}

		batch.Entries = append(batch.Entries, e)
		batch.Total = batch.Total.Add(e.Amount)
	}

	batches := make([]*Batch, 0, len(order))
	for _, key := range order {
		batch := groups[key]
		finalizeBatch(batch)
		batches = append(batches, batch)
	}

	sort.SliceStable(batches, func(i, j int) bool {
		if !batches[i].PaidAt.Equal(batches[j].PaidAt) {
			return batches[i].PaidAt.After(batches[j].PaidAt)
		}
		return latestCreatedAt(batches[i]).After(latestCreatedAt(batches[j]))
	})

	return batches
}

func matchesBatchFilter(e *LedgerEntry, filter BatchFilter) bool {
	if filter.EmployeeID != "" && e.EmployeeID != filter.EmployeeID {
		return false
	}
	if filter.From != nil && e.PaidAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && e.PaidAt.After(*filter.To) {
		return false
	}
	return true
}

func batchKey(e *LedgerEntry) string {
	if e.Kind == EntryKindReversal {
		return "reversal/" + e.ID
	}
	return e.PeriodStart.UTC().Format(dateLayout) + "/" + e.PaidAt.UTC().Format(dateLayout)
}

func finalizeBatch(batch *Batch) {
	seen := make(map[string]struct{})
	reasons := make(map[string]struct{})
	for _, e := range batch.Entries {
		seen[e.EmployeeID] = struct{}{}
		if e.Reason != "" {
			reasons[e.Reason] = struct{}{}
		}
	}

	batch.EmployeeCount = len(seen)
	for reason := range reasons {
		batch.Reasons = append(batch.Reasons, reason)
	}
	sort.Strings(batch.Reasons)
}

func latestCreatedAt(batch *Batch) time.Time {
	var latest time.Time
	for _, e := range batch.Entries {
		if e.CreatedAt.After(latest) {
			latest = e.CreatedAt
		}
	}
	return latest
}
