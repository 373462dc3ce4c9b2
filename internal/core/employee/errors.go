package employee

import "errors"

var (
	ErrInvalidID         = errors.New("employee: invalid id")
	ErrInvalidName       = errors.New("employee: invalid name")
	ErrInvalidWeeklyRate = errors.New("employee: invalid weekly rate")
	ErrInvalidStatus     = errors.New("employee: invalid status")
	ErrInvalidPayMethod  = errors.New("employee: invalid pay method")
	ErrInvalidPageSize   = errors.New("employee: invalid page size")
	ErrInvalidPageToken  = errors.New("employee: invalid page token")
	ErrEmployeeNotFound  = errors.New("employee: not found")
)
