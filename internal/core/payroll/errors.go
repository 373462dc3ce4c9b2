package payroll

import (
	"errors"
	"fmt"
)

var (
	// ErrObligationNotFound は支払予定が存在しない場合に返却されます。
	ErrObligationNotFound = errors.New("payroll: obligation not found")
	// ErrObligationNotPaid は未払いの支払予定に対して取消を要求した場合に返却されます。
	// 取消対象となる支払が存在しないため、not found の一種として扱われます。
	ErrObligationNotPaid = fmt.Errorf("%w: obligation has not been paid", ErrObligationNotFound)
	// ErrInvalidTransition は状態遷移の規則に反した場合に返却されます。
	ErrInvalidTransition = errors.New("payroll: invalid status transition")
	// ErrReasonRequired は取消理由が空の場合に返却されます。
	ErrReasonRequired = errors.New("payroll: reversal reason is required")
	// ErrInvalidMethod は支払方法が不正な場合に返却されます。
	ErrInvalidMethod = errors.New("payroll: invalid payment method")
	// ErrInvalidStatus は支払予定の状態指定が不正な場合に返却されます。
	ErrInvalidStatus = errors.New("payroll: invalid status")
	// ErrInvalidPaidDate は支払日が不正な場合に返却されます。
	ErrInvalidPaidDate = errors.New("payroll: invalid paid date")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID = errors.New("payroll: invalid id")
	// ErrInvalidRange は期間指定が不正な場合に返却されます。
	ErrInvalidRange = errors.New("payroll: invalid date range")
)
