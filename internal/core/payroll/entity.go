package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status は支払予定の状態を表します。
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusCanceled Status = "canceled"
)

// Method は支払方法を表します。
type Method string

const (
	MethodCash          Method = "cash"
	MethodCheck         Method = "check"
	MethodDirectDeposit Method = "direct_deposit"
	MethodACH           Method = "ach"
	MethodWire          Method = "wire"
)

// Obligation は従業員1人・1給与期間分の支払予定です。
// 生成時点の週給がスナップショットされ、以後の時給変更の影響を受けません。
type Obligation struct {
	ID           string
	EmployeeID   string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Amount       decimal.Decimal
	Status       Status
	Method       Method
	CheckNumber  string
	BankName     string
	AccountLast4 string
	PaidAt       *time.Time
	CreatedAt    time.Time
}

// EntryKind は台帳エントリの種別を表します。
type EntryKind string

const (
	EntryKindPayment  EntryKind = "payment"
	EntryKindReversal EntryKind = "reversal"
)

// LedgerEntry は確定した支払、またはその取消を表す追記専用レコードです。
// 一度作成されたエントリは更新も削除もされません。
type LedgerEntry struct {
	ID                string
	Kind              EntryKind
	ObligationID      string
	EmployeeID        string
	PeriodStart       time.Time
	Amount            decimal.Decimal
	ReversesPaymentID string
	Reason            string
	PaidAt            time.Time
	CreatedAt         time.Time
}

// Batch は同一の支払日・給与期間を共有する台帳エントリの集計です。
// 読み取り時に毎回再計算される派生データであり、永続化されません。
type Batch struct {
	PeriodStart   time.Time
	PaidAt        time.Time
	Total         decimal.Decimal
	EmployeeCount int
	Reasons       []string
	Entries       []*LedgerEntry
}

func isValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodCheck, MethodDirectDeposit, MethodACH, MethodWire:
		return true
	default:
		return false
	}
}
