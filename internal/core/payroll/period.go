package payroll

import "time"

// periodDays は給与期間の長さ（日数）です。期間は固定7日です。
const periodDays = 7

// Period は基準曜日に揃えられた7日間の給与期間です。End は Start+6日（両端含む）です。
type Period struct {
	Start time.Time
	End   time.Time
}

// NormalizeToAnchor は日付を UTC の0時に丸めた上で、
// 基準曜日に当たる直近の過去（または同日）まで巻き戻します。
func NormalizeToAnchor(t time.Time, anchor time.Weekday) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) - int(anchor) + periodDays) % periodDays
	return day.AddDate(0, 0, -offset)
}

// PeriodsInRange は [rangeStart, rangeEnd] に開始日が含まれる全ての給与期間を返します。
// rangeStart は基準曜日まで巻き戻されます。rangeStart > rangeEnd の場合は空を返します。
func PeriodsInRange(rangeStart, rangeEnd time.Time, anchor time.Weekday) []Period {
	if rangeStart.After(rangeEnd) {
		return nil
	}

	end := time.Date(rangeEnd.Year(), rangeEnd.Month(), rangeEnd.Day(), 0, 0, 0, 0, time.UTC)

	var periods []Period
	for start := NormalizeToAnchor(rangeStart, anchor); !start.After(end); start = start.AddDate(0, 0, periodDays) {
		periods = append(periods, Period{
			Start: start,
			End:   start.AddDate(0, 0, periodDays-1),
		})
	}
	return periods
}
