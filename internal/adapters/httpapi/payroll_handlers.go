package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ogurasousui/payroll-clean-arch/internal/core/payroll"
)

type generatePaymentsRequest struct {
	RangeStart string `json:"range_start" validate:"required,datetime=2006-01-02"`
	RangeEnd   string `json:"range_end" validate:"required,datetime=2006-01-02"`
}

type generatePaymentsResponse struct {
	Created           int                   `json:"created"`
	SkippedExisting   int                   `json:"skipped_existing"`
	SkippedIneligible int                   `json:"skipped_ineligible"`
	Obligations       []*obligationResponse `json:"obligations"`
}

type markPaidRequest struct {
	PaidAt       string `json:"paid_at" validate:"required,datetime=2006-01-02"`
	Method       string `json:"method" validate:"required,oneof=cash check direct_deposit ach wire"`
	BankName     string `json:"bank_name"`
	AccountLast4 string `json:"account_last4" validate:"omitempty,len=4,numeric"`
}

type reverseRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type obligationResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	PeriodStart  string  `json:"period_start"`
	PeriodEnd    string  `json:"period_end"`
	Amount       string  `json:"amount"`
	Status       string  `json:"status"`
	Method       string  `json:"method,omitempty"`
	CheckNumber  string  `json:"check_number,omitempty"`
	BankName     string  `json:"bank_name,omitempty"`
	AccountLast4 string  `json:"account_last4,omitempty"`
	PaidAt       *string `json:"paid_at"`
	CreatedAt    string  `json:"created_at"`
}

type ledgerEntryResponse struct {
	ID                string `json:"id"`
	Kind              string `json:"kind"`
	ObligationID      string `json:"obligation_id"`
	EmployeeID        string `json:"employee_id"`
	PeriodStart       string `json:"period_start"`
	Amount            string `json:"amount"`
	ReversesPaymentID string `json:"reverses_payment_id,omitempty"`
	Reason            string `json:"reason,omitempty"`
	PaidAt            string `json:"paid_at"`
}

type batchResponse struct {
	PeriodStart   string                 `json:"period_start"`
	PaidAt        string                 `json:"paid_at"`
	Total         string                 `json:"total"`
	EmployeeCount int                    `json:"employee_count"`
	Reasons       []string               `json:"reasons,omitempty"`
	Entries       []*ledgerEntryResponse `json:"entries"`
}

func (s *Server) handleGeneratePayments(w http.ResponseWriter, r *http.Request) {
	var req generatePaymentsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	rangeStart, _ := time.Parse(dateLayout, req.RangeStart)
	rangeEnd, _ := time.Parse(dateLayout, req.RangeEnd)

	result, err := s.payments.GeneratePayments(r.Context(), payroll.GeneratePaymentsInput{
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	obligationsGenerated.Add(float64(result.Created))
	obligationsSkipped.WithLabelValues("existing").Add(float64(result.SkippedExisting))
	obligationsSkipped.WithLabelValues("ineligible").Add(float64(result.SkippedIneligible))

	resp := generatePaymentsResponse{
		Created:           result.Created,
		SkippedExisting:   result.SkippedExisting,
		SkippedIneligible: result.SkippedIneligible,
		Obligations:       make([]*obligationResponse, 0, len(result.Obligations)),
	}
	for _, o := range result.Obligations {
		resp.Obligations = append(resp.Obligations, toObligationResponse(o))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	paidAt, _ := time.Parse(dateLayout, req.PaidAt)

	paid, err := s.payments.MarkPaid(r.Context(), payroll.MarkPaidInput{
		ID:           chi.URLParam(r, "id"),
		PaidAt:       paidAt,
		Method:       payroll.Method(req.Method),
		BankName:     req.BankName,
		AccountLast4: req.AccountLast4,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	paymentsMarkedPaid.WithLabelValues(string(paid.Method)).Inc()

	writeJSON(w, http.StatusOK, toObligationResponse(paid))
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	entry, err := s.payments.Reverse(r.Context(), payroll.ReverseInput{
		ObligationID: chi.URLParam(r, "id"),
		Reason:       req.Reason,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	paymentsReversed.Inc()

	writeJSON(w, http.StatusCreated, toLedgerEntryResponse(entry))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	canceled, err := s.payments.Cancel(r.Context(), payroll.CancelInput{ID: chi.URLParam(r, "id")})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toObligationResponse(canceled))
}

func (s *Server) handleGetObligation(w http.ResponseWriter, r *http.Request) {
	found, err := s.payments.GetObligation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toObligationResponse(found))
}

func (s *Server) handleListObligations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	in := payroll.ListObligationsInput{EmployeeID: query.Get("employee_id")}
	if raw := query.Get("status"); raw != "" {
		status := payroll.Status(raw)
		in.Status = &status
	}

	from, ok := parseDateQuery(w, query.Get("from"), "from")
	if !ok {
		return
	}
	in.From = from

	to, ok := parseDateQuery(w, query.Get("to"), "to")
	if !ok {
		return
	}
	in.To = to

	obligations, err := s.payments.ListObligations(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]*obligationResponse, 0, len(obligations))
	for _, o := range obligations {
		resp = append(resp, toObligationResponse(o))
	}

	writeJSON(w, http.StatusOK, map[string]any{"payments": resp})
}

func (s *Server) handleListLedgerBatches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	in := payroll.ListLedgerBatchesInput{EmployeeID: query.Get("employee_id")}

	from, ok := parseDateQuery(w, query.Get("from"), "from")
	if !ok {
		return
	}
	in.From = from

	to, ok := parseDateQuery(w, query.Get("to"), "to")
	if !ok {
		return
	}
	in.To = to

	batches, err := s.payments.ListLedgerBatches(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]*batchResponse, 0, len(batches))
	for _, b := range batches {
		resp = append(resp, toBatchResponse(b))
	}

	writeJSON(w, http.StatusOK, map[string]any{"batches": resp})
}

func parseDateQuery(w http.ResponseWriter, raw, name string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+": "+err.Error())
		return nil, false
	}
	return &date, true
}

func toObligationResponse(o *payroll.Obligation) *obligationResponse {
	var paidAt *string
	if o.PaidAt != nil {
		formatted := o.PaidAt.Format(dateLayout)
		paidAt = &formatted
	}

	return &obligationResponse{
		ID:           o.ID,
		EmployeeID:   o.EmployeeID,
		PeriodStart:  o.PeriodStart.Format(dateLayout),
		PeriodEnd:    o.PeriodEnd.Format(dateLayout),
		Amount:       o.Amount.String(),
		Status:       string(o.Status),
		Method:       string(o.Method),
		CheckNumber:  o.CheckNumber,
		BankName:     o.BankName,
		AccountLast4: o.AccountLast4,
		PaidAt:       paidAt,
		CreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toLedgerEntryResponse(e *payroll.LedgerEntry) *ledgerEntryResponse {
	return &ledgerEntryResponse{
		ID:                e.ID,
		Kind:              string(e.Kind),
		ObligationID:      e.ObligationID,
		EmployeeID:        e.EmployeeID,
		PeriodStart:       e.PeriodStart.Format(dateLayout),
		Amount:            e.Amount.String(),
		ReversesPaymentID: e.ReversesPaymentID,
		Reason:            e.Reason,
		PaidAt:            e.PaidAt.Format(dateLayout),
	}
}

func toBatchResponse(b *payroll.Batch) *batchResponse {
	entries := make([]*ledgerEntryResponse, 0, len(b.Entries))
	for _, e := range b.Entries {
		entries = append(entries, toLedgerEntryResponse(e))
	}

	return &batchResponse{
		PeriodStart:   b.PeriodStart.Format(dateLayout),
		PaidAt:        b.PaidAt.Format(dateLayout),
		Total:         b.Total.String(),
		EmployeeCount: b.EmployeeCount,
		Reasons:       b.Reasons,
		Entries:       entries,
	}
}
