package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/payroll-clean-arch/internal/core/payroll"
	pgdb "github.com/ogurasousui/payroll-clean-arch/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

// LedgerRepository は PostgreSQL を利用した台帳永続化の実装です。
// 台帳は追記専用であり、このリポジトリは UPDATE / DELETE を一切発行しません。
type LedgerRepository struct {
	pool pgdb.Queryer
}

// NewLedgerRepository は LedgerRepository を生成します。
func NewLedgerRepository(pool pgdb.Queryer) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

const ledgerColumns = `id, kind, obligation_id, employee_id, period_start, amount::text, reverses_payment_id, reason, paid_at, created_at`

// Append は台帳エントリを追記します。
func (r *LedgerRepository) Append(ctx context.Context, e *payroll.LedgerEntry) (*payroll.LedgerEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO ledger_entries (id, kind, obligation_id, employee_id, period_start, amount, reverses_payment_id, reason, paid_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+ledgerColumns+`
    `,
		e.ID,
		string(e.Kind),
		e.ObligationID,
		e.EmployeeID,
		dateOnly(e.PeriodStart),
		e.Amount.String(),
		e.ReversesPaymentID,
		e.Reason,
		dateOnly(e.PaidAt),
		e.CreatedAt,
	)

	return scanLedgerEntry(row)
}

// List は台帳エントリの一覧を取得します。From/To は支払日に対する範囲です。
func (r *LedgerRepository) List(ctx context.Context, filter payroll.BatchFilter) ([]*payroll.LedgerEntry, error) {
	args := make([]any, 0, 3)
	conditions := make([]string, 0, 3)

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

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT ` + ledgerColumns + `
          FROM ledger_entries` + whereClause + `
         ORDER BY paid_at DESC, created_at DESC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*payroll.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func scanLedgerEntry(row pgx.Row) (*payroll.LedgerEntry, error) {
	var (
		id                string
		kind              string
		obligationID      string
		employeeID        string
		periodStart       time.Time
		amountText        string
		reversesPaymentID string
		reason            string
		paidAt            time.Time
		createdAt         time.Time
	)

	if err := row.Scan(
		&id,
		&kind,
		&obligationID,
		&employeeID,
		&periodStart,
		&amountText,
		&reversesPaymentID,
		&reason,
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

	return &payroll.LedgerEntry{
		ID:                id,
		Kind:              payroll.EntryKind(kind),
		ObligationID:      obligationID,
		EmployeeID:        employeeID,
		PeriodStart:       dateOnly(periodStart.UTC()),
		Amount:            amount,
		ReversesPaymentID: reversesPaymentID,
		Reason:            reason,
		PaidAt:            dateOnly(paidAt.UTC()),
		CreatedAt:         createdAt,
	}, nil
}
