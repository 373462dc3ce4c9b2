package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/payroll-clean-arch/internal/core/payroll"
	pgdb "github.com/ogurasousui/payroll-clean-arch/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

// ObligationRepository は PostgreSQL を利用した支払予定永続化の実装です。
// (employee_id, period_start) の一意制約がテーブルに定義されており、
// 重複生成はデータベース側で衝突として吸収されます。
type ObligationRepository struct {
	pool pgdb.Queryer
}

// NewObligationRepository は ObligationRepository を生成します。
func NewObligationRepository(pool pgdb.Queryer) *ObligationRepository {
	return &ObligationRepository{pool: pool}
}

const obligationColumns = `id, employee_id, period_start, period_end, amount::text, status, method, check_number, bank_name, account_last4, paid_at, created_at`

// Insert は支払予定を挿入します。(employee_id, period_start) が既に存在する場合は
// 何も書き込まず false を返します。重複は呼び出し側でスキップ件数として扱われます。
func (r *ObligationRepository) Insert(ctx context.Context, o *payroll.Obligation) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        INSERT INTO payment_obligations (id, employee_id, period_start, period_end, amount, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (employee_id, period_start) DO NOTHING
    `,
		o.ID,
		o.EmployeeID,
		dateOnly(o.PeriodStart),
		dateOnly(o.PeriodEnd),
		o.Amount.String(),
		string(o.Status),
		o.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// FindByID は ID で支払予定を取得します。
func (r *ObligationRepository) FindByID(ctx context.Context, id string) (*payroll.Obligation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+obligationColumns+`
          FROM payment_obligations
         WHERE id = $1
         LIMIT 1
    `, id)

	return scanObligation(row)
}

// FindByEmployeeAndPeriod は自然キーで支払予定を取得します。
func (r *ObligationRepository) FindByEmployeeAndPeriod(ctx context.Context, employeeID string, periodStart time.Time) (*payroll.Obligation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+obligationColumns+`
          FROM payment_obligations
         WHERE employee_id = $1 AND period_start = $2
         LIMIT 1
    `, employeeID, dateOnly(periodStart))

	return scanObligation(row)
}

// List は支払予定の一覧を取得します。From/To は期間開始日に対する範囲です。
func (r *ObligationRepository) List(ctx context.Context, filter payroll.ObligationFilter) ([]*payroll.Obligation, error) {
	args := make([]any, 0, 4)
	conditions := make([]string, 0, 4)

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, "employee_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, dateOnly(*filter.From))
		conditions = append(conditions, "period_start >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, dateOnly(*filter.To))
		conditions = append(conditions, "period_start <= $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT ` + obligationColumns + `
          FROM payment_obligations` + whereClause + `
         ORDER BY period_start DESC, employee_id ASC
    `

	return r.queryObligations(ctx, query, args...)
}

// ListByPeriodRange は期間開始日が範囲内の支払予定を返します。
func (r *ObligationRepository) ListByPeriodRange(ctx context.Context, from, to time.Time) ([]*payroll.Obligation, error) {
	return r.queryObligations(ctx, `
        SELECT `+obligationColumns+`
          FROM payment_obligations
         WHERE period_start >= $1 AND period_start <= $2
         ORDER BY period_start ASC, employee_id ASC
    `, dateOnly(from), dateOnly(to))
}

// ListPaid は支払済みの支払予定を返します。From/To は支払日に対する範囲です。
func (r *ObligationRepository) ListPaid(ctx context.Context, filter payroll.BatchFilter) ([]*payroll.Obligation, error) {
	args := []any{string(payroll.StatusPaid)}
	conditions := []string{"status = $1"}

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, "employee_id = $"+strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, dateOnly(*filter.From))
		conditions = append(conditions, "paid_at >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, dateOnly(*filter.To))
		conditions = append(conditions, "paid_at <= $"+strconv.Itoa(len(args)))
	}

	query := `
        SELECT ` + obligationColumns + `
          FROM payment_obligations
         WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY paid_at DESC, created_at DESC
    `

	return r.queryObligations(ctx, query, args...)
}

// MarkPaid は pending の支払予定を paid へ遷移させます。対象が既に遷移済みの場合、
// 行は更新されず ErrInvalidTransition を返します。
func (r *ObligationRepository) MarkPaid(ctx context.Context, id string, fields payroll.PaidFields) (*payroll.Obligation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE payment_obligations
           SET status = $1,
               paid_at = $2,
               method = $3,
               check_number = $4,
               bank_name = $5,
               account_last4 = $6
         WHERE id = $7 AND status = $8
        RETURNING `+obligationColumns+`
    `,
		string(payroll.StatusPaid),
		dateOnly(fields.PaidAt),
		string(fields.Method),
		fields.CheckNumber,
		fields.BankName,
		fields.AccountLast4,
		id,
		string(payroll.StatusPending),
	)

	updated, err := scanObligation(row)
	if err != nil {
		if errors.Is(err, payroll.ErrObligationNotFound) {
			return nil, payroll.ErrInvalidTransition
		}
		return nil, err
	}
	return updated, nil
}

// Cancel は pending の支払予定を canceled へ遷移させます。
func (r *ObligationRepository) Cancel(ctx context.Context, id string) (*payroll.Obligation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE payment_obligations
           SET status = $1
         WHERE id = $2 AND status = $3
        RETURNING `+obligationColumns+`
    `,
		string(payroll.StatusCanceled),
		id,
		string(payroll.StatusPending),
	)

	updated, err := scanObligation(row)
	if err != nil {
		if errors.Is(err, payroll.ErrObligationNotFound) {
			return nil, payroll.ErrInvalidTransition
		}
		return nil, err
	}
	return updated, nil
}

func (r *ObligationRepository) queryObligations(ctx context.Context, query string, args ...any) ([]*payroll.Obligation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obligations []*payroll.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obligations = append(obligations, o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return obligations, nil
}

func scanObligation(row pgx.Row) (*payroll.Obligation, error) {
	var (
		id           string
		employeeID   string
		periodStart  time.Time
		periodEnd    time.Time
		amountText   string
		status       string
		method       string
		checkNumber  string
		bankName     string
		accountLast4 string
		paidAt       sql.NullTime
		createdAt    time.Time
	)

	if err := row.Scan(
		&id,
		&employeeID,
		&periodStart,
		&periodEnd,
		&amountText,
		&status,
		&method,
		&checkNumber,
		&bankName,
		&accountLast4,
		&paidAt,
		&createdAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payroll.ErrObligationNotFound
		}
		return nil, err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(amountText))
	if err != nil {
		return nil, err
	}

	var paidPtr *time.Time
	if paidAt.Valid {
		t := paidAt.Time.UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		paidPtr = &date
	}

	return &payroll.Obligation{
		ID:           id,
		EmployeeID:   employeeID,
		PeriodStart:  dateOnly(periodStart.UTC()),
		PeriodEnd:    dateOnly(periodEnd.UTC()),
		Amount:       amount,
		Status:       payroll.Status(status),
		Method:       payroll.Method(method),
		CheckNumber:  checkNumber,
		BankName:     bankName,
		AccountLast4: accountLast4,
		PaidAt:       paidPtr,
		CreatedAt:    createdAt,
	}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
