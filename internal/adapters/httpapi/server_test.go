package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ogurasousui/payroll-clean-arch/internal/core/employee"
	"github.com/ogurasousui/payroll-clean-arch/internal/core/payroll"
)

type fakeEmployeeUseCase struct {
	createFn     func(ctx context.Context, in employee.CreateEmployeeInput) (*employee.Employee, error)
	updateFn     func(ctx context.Context, in employee.UpdateEmployeeInput) (*employee.Employee, error)
	getFn        func(ctx context.Context, in employee.GetEmployeeInput) (*employee.Employee, error)
	listFn       func(ctx context.Context, in employee.ListEmployeesInput) (*employee.ListEmployeesResult, error)
	listActiveFn func(ctx context.Context, asOf time.Time) ([]*employee.Employee, error)
}

func (f *fakeEmployeeUseCase) CreateEmployee(ctx context.Context, in employee.CreateEmployeeInput) (*employee.Employee, error) {
	return f.createFn(ctx, in)
}

func (f *fakeEmployeeUseCase) UpdateEmployee(ctx context.Context, in employee.UpdateEmployeeInput) (*employee.Employee, error) {
	return f.updateFn(ctx, in)
}

func (f *fakeEmployeeUseCase) GetEmployee(ctx context.Context, in employee.GetEmployeeInput) (*employee.Employee, error) {
	return f.getFn(ctx, in)
}

func (f *fakeEmployeeUseCase) ListEmployees(ctx context.Context, in employee.ListEmployeesInput) (*employee.ListEmployeesResult, error) {
	return f.listFn(ctx, in)
}

func (f *fakeEmployeeUseCase) ListActiveEmployees(ctx context.Context, asOf time.Time) ([]*employee.Employee, error) {
	return f.listActiveFn(ctx, asOf)
}

type fakePayrollUseCase struct {
	generateFn    func(ctx context.Context, in payroll.GeneratePaymentsInput) (*payroll.GeneratePaymentsResult, error)
	markPaidFn    func(ctx context.Context, in payroll.MarkPaidInput) (*payroll.Obligation, error)
	reverseFn     func(ctx context.Context, in payroll.ReverseInput) (*payroll.LedgerEntry, error)
	cancelFn      func(ctx context.Context, in payroll.CancelInput) (*payroll.Obligation, error)
	getFn         func(ctx context.Context, id string) (*payroll.Obligation, error)
	listFn        func(ctx context.Context, in payroll.ListObligationsInput) ([]*payroll.Obligation, error)
	listBatchesFn func(ctx context.Context, in payroll.ListLedgerBatchesInput) ([]*payroll.Batch, error)
}

func (f *fakePayrollUseCase) GeneratePayments(ctx context.Context, in payroll.GeneratePaymentsInput) (*payroll.GeneratePaymentsResult, error) {
	return f.generateFn(ctx, in)
}

func (f *fakePayrollUseCase) MarkPaid(ctx context.Context, in payroll.MarkPaidInput) (*payroll.Obligation, error) {
	return f.markPaidFn(ctx, in)
}

func (f *fakePayrollUseCase) Reverse(ctx context.Context, in payroll.ReverseInput) (*payroll.LedgerEntry, error) {
	return f.reverseFn(ctx, in)
}

func (f *fakePayrollUseCase) Cancel(ctx context.Context, in payroll.CancelInput) (*payroll.Obligation, error) {
	return f.cancelFn(ctx, in)
}

func (f *fakePayrollUseCase) GetObligation(ctx context.Context, id string) (*payroll.Obligation, error) {
	return f.getFn(ctx, id)
}

func (f *fakePayrollUseCase) ListObligations(ctx context.Context, in payroll.ListObligationsInput) ([]*payroll.Obligation, error) {
	return f.listFn(ctx, in)
}

func (f *fakePayrollUseCase) ListLedgerBatches(ctx context.Context, in payroll.ListLedgerBatchesInput) ([]*payroll.Batch, error) {
	return f.listBatchesFn(ctx, in)
}

func newTestServer(employees *fakeEmployeeUseCase, payments *fakePayrollUseCase) http.Handler {
	if employees == nil {
		employees = &fakeEmployeeUseCase{}
	}
	if payments == nil {
		payments = &fakePayrollUseCase{}
	}
	return NewServer(employees, payments).Handler()
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	handler := newTestServer(nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleCreateEmployee(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	var captured employee.CreateEmployeeInput

	employees := &fakeEmployeeUseCase{
		createFn: func(_ context.Context, in employee.CreateEmployeeInput) (*employee.Employee, error) {
			captured = in
			return &employee.Employee{
				ID:         "emp-1",
				Name:       in.Name,
				WeeklyRate: in.WeeklyRate,
				Status:     employee.StatusActive,
				PayMethod:  employee.PayMethodCheck,
				CreatedAt:  now,
				UpdatedAt:  now,
			}, nil
		},
	}

	handler := newTestServer(employees, nil)

	body := `{"name":"Yamada Taro","weekly_rate":"1000","payment_start_date":"2026-01-10"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	if captured.Name != "Yamada Taro" {
		t.Fatalf("unexpected name %q", captured.Name)
	}
	if !captured.WeeklyRate.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected weekly rate %s", captured.WeeklyRate)
	}
	if captured.PaymentStartDate == nil || captured.PaymentStartDate.Format(dateLayout) != "2026-01-10" {
		t.Fatalf("unexpected payment start date %+v", captured.PaymentStartDate)
	}

	var resp employeeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "emp-1" || resp.WeeklyRate != "1000" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHandleCreateEmployee_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"weekly_rate":"1000"}`},
		{name: "missing weekly rate", body: `{"name":"Yamada"}`},
		{name: "bad status", body: `{"name":"Yamada","weekly_rate":"1000","status":"retired"}`},
		{name: "bad date", body: `{"name":"Yamada","weekly_rate":"1000","payment_start_date":"Jan 10"}`},
		{name: "broken json", body: `{"name":`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := newTestServer(&fakeEmployeeUseCase{
				createFn: func(_ context.Context, _ employee.CreateEmployeeInput) (*employee.Employee, error) {
					t.Fatal("use case must not be called")
					return nil, nil
				},
			}, nil)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestHandleGetEmployee_NotFound(t *testing.T) {
	t.Parallel()

	handler := newTestServer(&fakeEmployeeUseCase{
		getFn: func(_ context.Context, _ employee.GetEmployeeInput) (*employee.Employee, error) {
			return nil, employee.ErrEmployeeNotFound
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleGeneratePayments(t *testing.T) {
	t.Parallel()

	var captured payroll.GeneratePaymentsInput
	payments := &fakePayrollUseCase{
		generateFn: func(_ context.Context, in payroll.GeneratePaymentsInput) (*payroll.GeneratePaymentsResult, error) {
			captured = in
			return &payroll.GeneratePaymentsResult{
				Created:           3,
				SkippedExisting:   1,
				SkippedIneligible: 2,
			}, nil
		},
	}

	handler := newTestServer(nil, payments)

	body := `{"range_start":"2026-01-04","range_end":"2026-01-31"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payroll/generate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if captured.RangeStart.Format(dateLayout) != "2026-01-04" || captured.RangeEnd.Format(dateLayout) != "2026-01-31" {
		t.Fatalf("unexpected range %+v", captured)
	}

	var resp generatePaymentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Created != 3 || resp.SkippedExisting != 1 || resp.SkippedIneligible != 2 {
		t.Fatalf("unexpected counts %+v", resp)
	}
}

func TestHandleGeneratePayments_MissingRange(t *testing.T) {
	t.Parallel()

	handler := newTestServer(nil, &fakePayrollUseCase{
		generateFn: func(_ context.Context, _ payroll.GeneratePaymentsInput) (*payroll.GeneratePaymentsResult, error) {
			t.Fatal("use case must not be called")
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payroll/generate", strings.NewReader(`{"range_start":"2026-01-04"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleMarkPaid(t *testing.T) {
	t.Parallel()

	paidAt := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	var captured payroll.MarkPaidInput

	payments := &fakePayrollUseCase{
		markPaidFn: func(_ context.Context, in payroll.MarkPaidInput) (*payroll.Obligation, error) {
			captured = in
			return &payroll.Obligation{
				ID:          in.ID,
				EmployeeID:  "emp-1",
				Status:      payroll.StatusPaid,
				Method:      in.Method,
				CheckNumber: "1001",
				PaidAt:      &paidAt,
			}, nil
		},
	}

	handler := newTestServer(nil, payments)

	body := `{"paid_at":"2026-01-12","method":"check"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/ob-1/pay", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if captured.ID != "ob-1" || captured.Method != payroll.MethodCheck {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp obligationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(payroll.StatusPaid) || resp.CheckNumber != "1001" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHandleMarkPaid_AlreadyPaid(t *testing.T) {
	t.Parallel()

	handler := newTestServer(nil, &fakePayrollUseCase{
		markPaidFn: func(_ context.Context, _ payroll.MarkPaidInput) (*payroll.Obligation, error) {
			return nil, payroll.ErrInvalidTransition
		},
	})

	body := `{"paid_at":"2026-01-12","method":"cash"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/ob-1/pay", strings.NewReader(body)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHandleReverse_RequiresReason(t *testing.T) {
	t.Parallel()

	handler := newTestServer(nil, &fakePayrollUseCase{
		reverseFn: func(_ context.Context, _ payroll.ReverseInput) (*payroll.LedgerEntry, error) {
			t.Fatal("use case must not be called")
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/ob-1/reverse", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleReverse(t *testing.T) {
	t.Parallel()

	paidAt := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	handler := newTestServer(nil, &fakePayrollUseCase{
		reverseFn: func(_ context.Context, in payroll.ReverseInput) (*payroll.LedgerEntry, error) {
			return &payroll.LedgerEntry{
				ID:                "le-2",
				Kind:              payroll.EntryKindReversal,
				ObligationID:      in.ObligationID,
				EmployeeID:        "emp-1",
				Amount:            decimal.NewFromInt(-1000),
				ReversesPaymentID: "le-1",
				Reason:            in.Reason,
				PaidAt:            paidAt,
			}, nil
		},
	})

	body := `{"reason":"duplicate check"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/ob-1/reverse", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	var resp ledgerEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Kind != string(payroll.EntryKindReversal) || resp.Amount != "-1000" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHandleListLedgerBatches_InvalidDate(t *testing.T) {
	t.Parallel()

	handler := newTestServer(nil, &fakePayrollUseCase{
		listBatchesFn: func(_ context.Context, _ payroll.ListLedgerBatchesInput) ([]*payroll.Batch, error) {
			t.Fatal("use case must not be called")
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/batches?from=yesterday", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleListLedgerBatches(t *testing.T) {
	t.Parallel()

	periodStart := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	var captured payroll.ListLedgerBatchesInput
	handler := newTestServer(nil, &fakePayrollUseCase{
		listBatchesFn: func(_ context.Context, in payroll.ListLedgerBatchesInput) ([]*payroll.Batch, error) {
			captured = in
			return []*payroll.Batch{{
				PeriodStart:   periodStart,
				PaidAt:        paidAt,
				Total:         decimal.NewFromInt(1900),
				EmployeeCount: 2,
				Entries: []*payroll.LedgerEntry{
					{ID: "le-1", Kind: payroll.EntryKindPayment, EmployeeID: "emp-1", Amount: decimal.NewFromInt(1000), PeriodStart: periodStart, PaidAt: paidAt},
					{ID: "le-2", Kind: payroll.EntryKindPayment, EmployeeID: "emp-2", Amount: decimal.NewFromInt(900), PeriodStart: periodStart, PaidAt: paidAt},
				},
			}}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/batches?employee_id=emp-1&from=2026-01-01&to=2026-01-31", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if captured.EmployeeID != "emp-1" {
		t.Fatalf("unexpected employee filter %q", captured.EmployeeID)
	}
	if captured.From == nil || captured.To == nil {
		t.Fatalf("expected date filters to be set, got %+v", captured)
	}

	var resp struct {
		Batches []*batchResponse `json:"batches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Batches) != 1 || resp.Batches[0].Total != "1900" || resp.Batches[0].EmployeeCount != 2 {
		t.Fatalf("unexpected batches %+v", resp.Batches)
	}
}
