package employee

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
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

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は従業員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	ListActiveEmployees(ctx context.Context, asOf time.Time) ([]*Employee, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateEmployeeInput は従業員登録時の入力です。
type CreateEmployeeInput struct {
	Name             string
	WeeklyRate       decimal.Decimal
	Status           *Status
	PaymentStartDate *time.Time
	PayMethod        *PayMethod
	BankName         string
	AccountLast4     string
}

// UpdateEmployeeInput は従業員更新時の入力です。nil のフィールドは変更されません。
type UpdateEmployeeInput struct {
	ID                  string
	Name                *string
	WeeklyRate          *decimal.Decimal
	Status              *Status
	PaymentStartDate    *time.Time
	PaymentStartDateSet bool
	PayMethod           *PayMethod
	BankName            *string
	AccountLast4        *string
}

// GetEmployeeInput は従業員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	PageSize  int
	PageToken string
	Status    *Status
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// CreateEmployee は新しい従業員を登録します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	if in.WeeklyRate.IsNegative() {
		return nil, ErrInvalidWeeklyRate
	}

	status := StatusActive
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status = *in.Status
	}

	method := PayMethodCheck
	if in.PayMethod != nil {
		if !isValidPayMethod(*in.PayMethod) {
			return nil, ErrInvalidPayMethod
		}
		method = *in.PayMethod
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		emp := &Employee{
			Name:             name,
			WeeklyRate:       in.WeeklyRate,
			Status:           status,
			PaymentStartDate: cloneTime(normalizeDate(in.PaymentStartDate)),
			PayMethod:        method,
			BankName:         strings.TrimSpace(in.BankName),
			AccountLast4:     strings.TrimSpace(in.AccountLast4),
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は従業員情報を更新します。既に生成済みの支払予定の金額は
// スナップショットであり、週給を変更しても影響を受けません。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			existing.Name = name
		}

		if in.WeeklyRate != nil {
			if in.WeeklyRate.IsNegative() {
				return ErrInvalidWeeklyRate
			}
			existing.WeeklyRate = *in.WeeklyRate
		}

		if in.Status != nil {
			if !isValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
		}

		if in.PaymentStartDateSet {
			existing.PaymentStartDate = cloneTime(normalizeDate(in.PaymentStartDate))
		}

		if in.PayMethod != nil {
			if !isValidPayMethod(*in.PayMethod) {
				return ErrInvalidPayMethod
			}
			existing.PayMethod = *in.PayMethod
		}

		if in.BankName != nil {
			existing.BankName = strings.TrimSpace(*in.BankName)
		}

		if in.AccountLast4 != nil {
			existing.AccountLast4 = strings.TrimSpace(*in.AccountLast4)
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// GetEmployee は従業員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は従業員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Status: statusPtr,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		employees = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

// ListActiveEmployees は指定時点で在籍中の従業員を返します。給与計算コアが
// 生成のたびに呼び出すため、結果は呼び出し間で安定している前提を置きません。
func (s *Service) ListActiveEmployees(ctx context.Context, asOf time.Time) ([]*Employee, error) {
	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListActive(txCtx, asOf)
		if err != nil {
			return err
		}
		employees = result
		return nil
	}); err != nil {
		return nil, err
	}

	return employees, nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	normalized := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &normalized
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusPaused, StatusLeaving, StatusLaidOff:
		return true
	default:
		return false
	}
}

func isValidPayMethod(method PayMethod) bool {
	switch method {
	case PayMethodCash, PayMethodCheck, PayMethodDirectDeposit, PayMethodACH, PayMethodWire:
		return true
	default:
		return false
	}
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
