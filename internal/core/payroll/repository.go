package payroll

import (
	"context"
	"time"
)

// ObligationFilter は支払予定の一覧取得条件です。From/To は期間開始日に対する
// 両端含みの範囲です。
type ObligationFilter struct {
	EmployeeID string
	Status     *Status
	From       *time.Time
	To         *time.Time
}

// PaidFields は支払確定時に設定されるフィールドです。
type PaidFields struct {
	PaidAt       time.Time
	Method       Method
	CheckNumber  string
	BankName     string
	AccountLast4 string
}

// ObligationRepository は支払予定の永続化を行うインターフェースです。
// Insert は (従業員ID, 期間開始日) の一意制約違反を致命的エラーとせず、
// 行が書き込まれたかどうかを返します。MarkPaid / Cancel は pending 状態の行のみを
// 更新し、対象が既に遷移済みの場合は ErrInvalidTransition を返します。
type ObligationRepository interface {
	Insert(ctx context.Context, o *Obligation) (bool, error)
	FindByID(ctx context.Context, id string) (*Obligation, error)
	FindByEmployeeAndPeriod(ctx context.Context, employeeID string, periodStart time.Time) (*Obligation, error)
	List(ctx context.Context, filter ObligationFilter) ([]*Obligation, error)
	ListByPeriodRange(ctx context.Context, from, to time.Time) ([]*Obligation, error)
	ListPaid(ctx context.Context, filter BatchFilter) ([]*Obligation, error)
	MarkPaid(ctx context.Context, id string, fields PaidFields) (*Obligation, error)
	Cancel(ctx context.Context, id string) (*Obligation, error)
}

// LedgerRepository は台帳エントリの永続化を行うインターフェースです。
// 台帳は追記専用であり、更新・削除の操作は契約に含まれません。
type LedgerRepository interface {
	Append(ctx context.Context, e *LedgerEntry) (*LedgerEntry, error)
	List(ctx context.Context, filter BatchFilter) ([]*LedgerEntry, error)
}
