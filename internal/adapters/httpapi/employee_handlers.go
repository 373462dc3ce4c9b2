package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ogurasousui/payroll-clean-arch/internal/core/employee"
)

type createEmployeeRequest struct {
	Name             string `json:"name" validate:"required"`
	WeeklyRate       string `json:"weekly_rate" validate:"required"`
	Status           string `json:"status" validate:"omitempty,oneof=active paused leaving laid_off"`
	PaymentStartDate string `json:"payment_start_date" validate:"omitempty,datetime=2006-01-02"`
	PayMethod        string `json:"pay_method" validate:"omitempty,oneof=cash check direct_deposit ach wire"`
	BankName         string `json:"bank_name"`
	AccountLast4     string `json:"account_last4" validate:"omitempty,len=4,numeric"`
}

type updateEmployeeRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1"`
	WeeklyRate       *string `json:"weekly_rate"`
	Status           *string `json:"status" validate:"omitempty,oneof=active paused leaving laid_off"`
	PaymentStartDate *string `json:"payment_start_date" validate:"omitempty,datetime=2006-01-02"`
	PayMethod        *string `json:"pay_method" validate:"omitempty,oneof=cash check direct_deposit ach wire"`
	BankName         *string `json:"bank_name"`
	AccountLast4     *string `json:"account_last4" validate:"omitempty,len=4,numeric"`
}

type employeeResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	WeeklyRate       string  `json:"weekly_rate"`
	Status           string  `json:"status"`
	PaymentStartDate *string `json:"payment_start_date"`
	PayMethod        string  `json:"pay_method"`
	BankName         string  `json:"bank_name,omitempty"`
	AccountLast4     string  `json:"account_last4,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type listEmployeesResponse struct {
	Employees     []*employeeResponse `json:"employees"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	rate, err := decimal.NewFromString(req.WeeklyRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "weekly_rate: "+err.Error())
		return
	}

	in := employee.CreateEmployeeInput{
		Name:         req.Name,
		WeeklyRate:   rate,
		BankName:     req.BankName,
		AccountLast4: req.AccountLast4,
	}
	if req.Status != "" {
		status := employee.Status(req.Status)
		in.Status = &status
	}
	if req.PayMethod != "" {
		method := employee.PayMethod(req.PayMethod)
		in.PayMethod = &method
	}
	if req.PaymentStartDate != "" {
		date, err := time.Parse(dateLayout, req.PaymentStartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "payment_start_date: "+err.Error())
			return
		}
		in.PaymentStartDate = &date
	}

	created, err := s.employees.CreateEmployee(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeResponse(created))
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req updateEmployeeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	in := employee.UpdateEmployeeInput{
		ID:           chi.URLParam(r, "id"),
		Name:         req.Name,
		BankName:     req.BankName,
		AccountLast4: req.AccountLast4,
	}
	if req.WeeklyRate != nil {
		rate, err := decimal.NewFromString(*req.WeeklyRate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "weekly_rate: "+err.Error())
			return
		}
		in.WeeklyRate = &rate
	}
	if req.Status != nil {
		status := employee.Status(*req.Status)
		in.Status = &status
	}
	if req.PayMethod != nil {
		method := employee.PayMethod(*req.PayMethod)
		in.PayMethod = &method
	}
	if req.PaymentStartDate != nil {
		in.PaymentStartDateSet = true
		// 空文字列は支払開始日のクリアを意味します。
		if *req.PaymentStartDate != "" {
			date, err := time.Parse(dateLayout, *req.PaymentStartDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "payment_start_date: "+err.Error())
				return
			}
			in.PaymentStartDate = &date
		}
	}

	updated, err := s.employees.UpdateEmployee(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeResponse(updated))
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	found, err := s.employees.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: chi.URLParam(r, "id")})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeResponse(found))
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	in := employee.ListEmployeesInput{
		PageToken: query.Get("page_token"),
	}
	if raw := query.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "page_size: "+err.Error())
			return
		}
		in.PageSize = size
	}
	if raw := query.Get("status"); raw != "" {
		status := employee.Status(raw)
		in.Status = &status
	}

	result, err := s.employees.ListEmployees(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := listEmployeesResponse{
		Employees:     make([]*employeeResponse, 0, len(result.Employees)),
		NextPageToken: result.NextPageToken,
	}
	for _, e := range result.Employees {
		resp.Employees = append(resp.Employees, toEmployeeResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

func toEmployeeResponse(e *employee.Employee) *employeeResponse {
	var startDate *string
	if e.PaymentStartDate != nil {
		formatted := e.PaymentStartDate.Format(dateLayout)
		startDate = &formatted
	}

	return &employeeResponse{
		ID:               e.ID,
		Name:             e.Name,
		WeeklyRate:       e.WeeklyRate.String(),
		Status:           string(e.Status),
		PaymentStartDate: startDate,
		PayMethod:        string(e.PayMethod),
		BankName:         e.BankName,
		AccountLast4:     e.AccountLast4,
		CreatedAt:        e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
