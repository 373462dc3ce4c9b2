package payroll

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/payroll-clean-arch/internal/core/employee"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Roster は在籍中（active）の従業員を提供します。従業員の属性変更はこのコアの
// 外側で行われるため、生成のたびに再取得して判定します。
type Roster interface {
	ListActive(ctx context.Context, asOf time.Time) ([]*employee.Employee, error)
}

const defaultCheckStartNumber = 1001

// Config は給与計算コアの設定です。
type Config struct {
	PeriodAnchor     time.Weekday
	CheckStartNumber int
}

// Service は支払予定の生成・状態遷移・台帳射影のユースケースをまとめます。
type Service struct {
	obligations ObligationRepository
	ledger      LedgerRepository
	roster      Roster
	clock       Clock
	tx          TransactionManager

	anchor     time.Weekday
	checkStart int

	// checkMu は小切手番号の採番を直列化します。Sequencer 自体は純粋関数であり、
	// 同一番号を二重採番しない保証はこのロックとトランザクションで与えます。
	checkMu sync.Mutex
}

// UseCase は給与計算ユースケースの公開インターフェースです。
type UseCase interface {
	GeneratePayments(ctx context.Context, in GeneratePaymentsInput) (*GeneratePaymentsResult, error)
	MarkPaid(ctx context.Context, in MarkPaidInput) (*Obligation, error)
	Reverse(ctx context.Context, in ReverseInput) (*LedgerEntry, error)
	Cancel(ctx context.Context, in CancelInput) (*Obligation, error)
	GetObligation(ctx context.Context, id string) (*Obligation, error)
	ListObligations(ctx context.Context, in ListObligationsInput) ([]*Obligation, error)
	ListLedgerBatches(ctx context.Context, in ListLedgerBatchesInput) ([]*Batch, error)
}

// NewService は Service を生成します。
func NewService(obligations ObligationRepository, ledger LedgerRepository, roster Roster, cfg Config, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	checkStart := cfg.CheckStartNumber
	if checkStart <= 0 {
		checkStart = defaultCheckStartNumber
	}
	return &Service{
		obligations: obligations,
		ledger:      ledger,
		roster:      roster,
		clock:       clock,
		tx:          tx,
		anchor:      cfg.PeriodAnchor,
		checkStart:  checkStart,
	}
}

// GeneratePaymentsInput は支払予定生成の入力です。
type GeneratePaymentsInput struct {
	RangeStart time.Time
	RangeEnd   time.Time
}

// GeneratePaymentsResult は生成結果の件数報告です。
type GeneratePaymentsResult struct {
	Obligations       []*Obligation
	Created           int
	SkippedExisting   int
	SkippedIneligible int
}

// GeneratePayments は指定範囲の給与期間に対する支払予定を生成して永続化します。
// 既存の支払予定と重複する候補は件数として報告されるだけで、エラーにはなりません。
// 同じ範囲で再実行しても新たな支払予定は生まれず、週次の増分実行と一括実行の
// どちらでも同じ重複排除規則が適用されます。
func (s *Service) GeneratePayments(ctx context.Context, in GeneratePaymentsInput) (*GeneratePaymentsResult, error) {
	if in.RangeStart.IsZero() || in.RangeEnd.IsZero() {
		return nil, ErrInvalidRange
	}

	result := &GeneratePaymentsResult{}
	if in.RangeStart.After(in.RangeEnd) {
		return result, nil
	}

	rangeStart := NormalizeToAnchor(in.RangeStart, s.anchor)
	rangeEnd := normalizeDay(in.RangeEnd)

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		employees, err := s.roster.ListActive(txCtx, s.clock.Now())
		if err != nil {
			return err
		}

		existing, err := s.obligations.ListByPeriodRange(txCtx, rangeStart, rangeEnd)
		if err != nil {
			return err
		}

		generated := GeneratePeriods(GenerateInput{
			Employees:  employees,
			Existing:   existing,
			RangeStart: rangeStart,
			RangeEnd:   rangeEnd,
			Anchor:     s.anchor,
		}, s.clock.Now())

		result.SkippedExisting = generated.SkippedExisting
		result.SkippedIneligible = generated.SkippedIneligible

		for _, o := range generated.Created {
			inserted, err := s.obligations.Insert(txCtx, o)
			if err != nil {
				return err
			}
			if !inserted {
				// 並行する生成トリガーが同じ行を先に書き込んだケース。重複は無害です。
				result.SkippedExisting++
				continue
			}
			result.Obligations = append(result.Obligations, o)
			result.Created++
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// MarkPaidInput は支払確定の入力です。小切手払いの場合、番号は Sequencer により
// サービス内部で採番されるため、呼び出し側は指定しません。
type MarkPaidInput struct {
	ID           string
	PaidAt       time.Time
	Method       Method
	BankName     string
	AccountLast4 string
}

// MarkPaid は支払予定を pending から paid へ遷移させ、支払の台帳エントリを追記します。
// 遷移と台帳追記は同一トランザクションで行われ、部分的な状態は残りません。
func (s *Service) MarkPaid(ctx context.Context, in MarkPaidInput) (*Obligation, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, ErrInvalidID
	}
	if !isValidMethod(in.Method) {
		return nil, ErrInvalidMethod
	}
	if in.PaidAt.IsZero() {
		return nil, ErrInvalidPaidDate
	}
	paidAt := normalizeDay(in.PaidAt)

	if in.Method == MethodCheck {
		s.checkMu.Lock()
		defer s.checkMu.Unlock()
	}

	var updated *Obligation
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.obligations.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		if existing.Status != StatusPending {
			return ErrInvalidTransition
		}

		fields := PaidFields{
			PaidAt:       paidAt,
			Method:       in.Method,
			BankName:     strings.TrimSpace(in.BankName),
			AccountLast4: strings.TrimSpace(in.AccountLast4),
		}

		if in.Method == MethodCheck {
			paid, err := s.obligations.ListPaid(txCtx, BatchFilter{})
			if err != nil {
				return err
			}
			fields.CheckNumber = strconv.Itoa(NextCheckNumber(paid, s.checkStart))
		}

		result, err := s.obligations.MarkPaid(txCtx, existing.ID, fields)
		if err != nil {
			return err
		}

		if _, err := s.ledger.Append(txCtx, &LedgerEntry{
			ID:           uuid.NewString(),
			Kind:         EntryKindPayment,
			ObligationID: result.ID,
			EmployeeID:   result.EmployeeID,
			PeriodStart:  result.PeriodStart,
			Amount:       result.Amount,
			PaidAt:       paidAt,
			CreatedAt:    s.clock.Now(),
		}); err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// ReverseInput は支払取消の入力です。Reason は必須です。
type ReverseInput struct {
	ObligationID string
	Reason       string
}

// Reverse は支払済みの支払予定に対する取消エントリを台帳へ追記します。
// 元の支払予定とその台帳エントリには一切手を加えません。支払の誤りを訂正する
// 唯一の正規の手段であり、台帳履歴の破壊的な削除は契約に含まれません。
func (s *Service) Reverse(ctx context.Context, in ReverseInput) (*LedgerEntry, error) {
	if strings.TrimSpace(in.ObligationID) == "" {
		return nil, ErrInvalidID
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var entry *LedgerEntry
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		original, err := s.obligations.FindByID(txCtx, in.ObligationID)
		if err != nil {
			return err
		}
		if original.Status != StatusPaid {
			return ErrObligationNotPaid
		}

		now := s.clock.Now()
		appended, err := s.ledger.Append(txCtx, &LedgerEntry{
			ID:                uuid.NewString(),
			Kind:              EntryKindReversal,
			ObligationID:      original.ID,
			EmployeeID:        original.EmployeeID,
			PeriodStart:       original.PeriodStart,
			Amount:            original.Amount.Neg(),
			ReversesPaymentID: original.ID,
			Reason:            reason,
			PaidAt:            normalizeDay(now),
			CreatedAt:         now,
		})
		if err != nil {
			return err
		}

		entry = appended
		return nil
	}); err != nil {
		return nil, err
	}

	return entry, nil
}

// CancelInput は支払予定取消の入力です。
type CancelInput struct {
	ID string
}

// Cancel は未払いの支払予定を canceled へ遷移させます。pending 以外の状態からの
// 取消は許可されません。
func (s *Service) Cancel(ctx context.Context, in CancelInput) (*Obligation, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, ErrInvalidID
	}

	var canceled *Obligation
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.obligations.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		if existing.Status != StatusPending {
			return ErrInvalidTransition
		}

		result, err := s.obligations.Cancel(txCtx, existing.ID)
		if err != nil {
			return err
		}

		canceled = result
		return nil
	}); err != nil {
		return nil, err
	}

	return canceled, nil
}

// GetObligation は支払予定を取得します。
func (s *Service) GetObligation(ctx context.Context, id string) (*Obligation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	var found *Obligation
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.obligations.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListObligationsInput は支払予定の一覧取得条件です。
type ListObligationsInput struct {
	EmployeeID string
	Status     *Status
	From       *time.Time
	To         *time.Time
}

// ListObligations は支払予定の一覧を取得します。
func (s *Service) ListObligations(ctx context.Context, in ListObligationsInput) ([]*Obligation, error) {
	if in.Status != nil {
		switch *in.Status {
		case StatusPending, StatusPaid, StatusCanceled:
		default:
			return nil, ErrInvalidStatus
		}
	}

	var obligations []*Obligation
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.obligations.List(txCtx, ObligationFilter{
			EmployeeID: in.EmployeeID,
			Status:     in.Status,
			From:       in.From,
			To:         in.To,
		})
		if err != nil {
			return err
		}
		obligations = result
		return nil
	}); err != nil {
		return nil, err
	}

	return obligations, nil
}

// ListLedgerBatchesInput は台帳バッチの取得条件です。
type ListLedgerBatchesInput struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
}

// ListLedgerBatches は台帳エントリと支払済みの支払予定を読み込み、
// 要求のたびにバッチへ射影して返します。射影は純粋であり、キャッシュは持ちません。
func (s *Service) ListLedgerBatches(ctx context.Context, in ListLedgerBatchesInput) ([]*Batch, error) {
	filter := BatchFilter{
		EmployeeID: in.EmployeeID,
		From:       in.From,
		To:         in.To,
	}

	var batches []*Batch
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		entries, err := s.ledger.List(txCtx, filter)
		if err != nil {
			return err
		}
		paid, err := s.obligations.ListPaid(txCtx, filter)
		if err != nil {
			return err
		}
		batches = ProjectBatches(entries, paid, filter)
		return nil
	}); err != nil {
		return nil, err
	}

	return batches, nil
}

func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
