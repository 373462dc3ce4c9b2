package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/payroll-clean-arch/internal/core/employee"
)

const dateLayout = "2006-01-02"

// obligationNamespace は支払予定ID導出用の UUID v5 名前空間です。
// 変更すると既存の支払予定との重複排除が壊れるため固定です。
var obligationNamespace = uuid.MustParse("8f8f4f62-3c4f-4bfa-9a44-1f52a8c1d6b7")

// ObligationID は (従業員ID, 期間開始日) の自然キーから決定的なIDを導出します。
// 同じ組に対しては常に同じIDとなり、生成の再実行や並行実行が重複登録ではなく
// 衝突（＝スキップ）として収束します。
func ObligationID(employeeID string, periodStart time.Time) string {
	key := employeeID + "/" + periodStart.UTC().Format(dateLayout)
	return uuid.NewSHA1(obligationNamespace, []byte(key)).String()
}

// GenerateInput は支払予定生成への入力です。Employees は呼び出し時点で
// 在籍中（active）の従業員のみを含むことが前提です。
type GenerateInput struct {
	Employees  []*employee.Employee
	Existing   []*Obligation
	RangeStart time.Time
	RangeEnd   time.Time
	Anchor     time.Weekday
}

// GenerateResult は生成結果と、生成されなかった候補の内訳です。
type GenerateResult struct {
	Created           []*Obligation
	SkippedExisting   int
	SkippedIneligible int
}

// GeneratePeriods は指定範囲の各給与期間について、従業員ごとの支払予定を生成します。
// 既に同じ (従業員, 期間開始日) の支払予定が存在する候補、および支払開始日が
// 期間開始日より後の従業員はスキップされます。純粋関数であり、永続化は呼び出し側が行います。
func GeneratePeriods(in GenerateInput, now time.Time) *GenerateResult {
	result := &GenerateResult{}

	periods := PeriodsInRange(in.RangeStart, in.RangeEnd, in.Anchor)
	if len(periods) == 0 || len(in.Employees) == 0 {
		return result
	}

	existing := make(map[string]struct{}, len(in.Existing))
	for _, o := range in.Existing {
		existing[obligationKey(o.EmployeeID, o.PeriodStart)] = struct{}{}
	}

	for _, period := range periods {
		for _, emp := range in.Employees {
			if emp.PaymentStartDate != nil && emp.PaymentStartDate.After(period.Start) {
				result.SkippedIneligible++
				continue
			}

			key := obligationKey(emp.ID, period.Start)
			if _, ok := existing[key]; ok {
				result.SkippedExisting++
				continue
			}
			existing[key] = struct{}{}

			result.Created = append(result.Created, &Obligation{
				ID:          ObligationID(emp.ID, period.Start),
				EmployeeID:  emp.ID,
				PeriodStart: period.Start,
				PeriodEnd:   period.End,
				Amount:      emp.WeeklyRate,
				Status:      StatusPending,
				CreatedAt:   now,
			})
		}
	}

	return result
}

func obligationKey(employeeID string, periodStart time.Time) string {
	return employeeID + "/" + periodStart.UTC().Format(dateLayout)
}
