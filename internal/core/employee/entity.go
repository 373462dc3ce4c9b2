package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status は従業員の就業状態を表します。支払予定の生成対象になるのは active のみです。
type Status string

const (
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
	StatusLeaving Status = "leaving"
	StatusLaidOff Status = "laid_off"
)

// PayMethod は従業員が希望する受け取り方法です。
type PayMethod string

const (
	PayMethodCash          PayMethod = "cash"
	PayMethodCheck         PayMethod = "check"
	PayMethodDirectDeposit PayMethod = "direct_deposit"
	PayMethodACH           PayMethod = "ach"
	PayMethodWire          PayMethod = "wire"
)

// Employee は従業員エンティティです。給与計算コアからは読み取り専用であり、
// 属性の変更は人事操作としてこのコアの外側で行われます。
type Employee struct {
	ID               string
	Name             string
	WeeklyRate       decimal.Decimal
	Status           Status
	PaymentStartDate *time.Time
	PayMethod        PayMethod
	BankName         string
	AccountLast4     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
