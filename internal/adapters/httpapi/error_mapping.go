package httpapi

import (
	"errors"
	"net/http"

	"github.com/ogurasousui/payroll-clean-arch/internal/core/employee"
	"github.com/ogurasousui/payroll-clean-arch/internal/core/payroll"
)

func toHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidWeeklyRate),
		errors.Is(err, employee.ErrInvalidStatus),
		errors.Is(err, employee.ErrInvalidPayMethod),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, payroll.ErrInvalidID),
		errors.Is(err, payroll.ErrInvalidMethod),
		errors.Is(err, payroll.ErrInvalidStatus),
		errors.Is(err, payroll.ErrInvalidPaidDate),
		errors.Is(err, payroll.ErrInvalidRange),
		errors.Is(err, payroll.ErrReasonRequired):
		return http.StatusBadRequest
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, payroll.ErrObligationNotFound):
		return http.StatusNotFound
	case errors.Is(err, payroll.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := toHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeError(w, status, message)
}
