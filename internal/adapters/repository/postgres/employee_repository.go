package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/payroll-clean-arch/internal/core/employee"
	pgdb "github.com/ogurasousui/payroll-clean-arch/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const employeeCheckViolationCode = "23514"

// EmployeeRepository は PostgreSQL を利用した従業員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

const employeeColumns = `id, name, weekly_rate::text, status, payment_start_date, pay_method, bank_name, account_last4, created_at, updated_at`

// Create は従業員を新規登録します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (name, weekly_rate, status, payment_start_date, pay_method, bank_name, account_last4, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+employeeColumns+`
    `,
		e.Name,
		e.WeeklyRate.String(),
		string(e.Status),
		nullableDate(e.PaymentStartDate),
		string(e.PayMethod),
		e.BankName,
		e.AccountLast4,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は従業員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET name = $1,
               weekly_rate = $2,
               status = $3,
               payment_start_date = $4,
               pay_method = $5,
               bank_name = $6,
               account_last4 = $7,
               updated_at = $8
         WHERE id = $9
        RETURNING `+employeeColumns+`
    `,
		e.Name,
		e.WeeklyRate.String(),
		string(e.Status),
		nullableDate(e.PaymentStartDate),
		string(e.PayMethod),
		e.BankName,
		e.AccountLast4,
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// FindByID は ID で従業員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は従業員の一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		whereClause = " WHERE status = $1"
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) == limitWithBuffer {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

// ListActive は指定時点で在籍中（active）の従業員を返します。
func (r *EmployeeRepository) ListActive(ctx context.Context, asOf time.Time) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE status = $1
           AND created_at <= $2
         ORDER BY created_at ASC, id ASC
    `, string(employee.StatusActive), asOf)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	var employees []*employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id           string
		name         string
		rateText     string
		status       string
		paymentStart sql.NullTime
		payMethod    string
		bankName     string
		accountLast4 string
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := row.Scan(
		&id,
		&name,
		&rateText,
		&status,
		&paymentStart,
		&payMethod,
		&bankName,
		&accountLast4,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(rateText))
	if err != nil {
		return nil, err
	}

	var startPtr *time.Time
	if paymentStart.Valid {
		t := paymentStart.Time.UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		startPtr = &date
	}

	return &employee.Employee{
		ID:               id,
		Name:             name,
		WeeklyRate:       rate,
		Status:           employee.Status(status),
		PaymentStartDate: startPtr,
		PayMethod:        employee.PayMethod(payMethod),
		BankName:         bankName,
		AccountLast4:     accountLast4,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case employeeCheckViolationCode:
			return employee.ErrInvalidWeeklyRate
		}
	}

	return err
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
