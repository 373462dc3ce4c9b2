// Package httpapi は従業員管理と給与支払のユースケースを HTTP API として公開します。
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogurasousui/payroll-clean-arch/internal/core/employee"
	"github.com/ogurasousui/payroll-clean-arch/internal/core/payroll"
)

const dateLayout = "2006-01-02"

const requestTimeout = 60 * time.Second

// Server は HTTP API サーバーです。
type Server struct {
	employees employee.UseCase
	payments  payroll.UseCase
	validate  *validator.Validate
}

// NewServer は Server を生成します。
func NewServer(employees employee.UseCase, payments payroll.UseCase) *Server {
	return &Server{
		employees: employees,
		payments:  payments,
		validate:  validator.New(),
	}
}

// Handler は全ルートを載せたルーターを返します。
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Post("/", s.handleCreateEmployee)
			r.Get("/", s.handleListEmployees)
			r.Get("/{id}", s.handleGetEmployee)
			r.Patch("/{id}", s.handleUpdateEmployee)
		})

		r.Post("/payroll/generate", s.handleGeneratePayments)

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", s.handleListObligations)
			r.Get("/{id}", s.handleGetObligation)
			r.Post("/{id}/pay", s.handleMarkPaid)
			r.Post("/{id}/reverse", s.handleReverse)
			r.Post("/{id}/cancel", s.handleCancel)
		})

		r.Get("/ledger/batches", s.handleListLedgerBatches)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON はリクエストボディを復号し、バリデーションを適用します。
// 失敗時はレスポンスを書き込み済みとして false を返します。
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
