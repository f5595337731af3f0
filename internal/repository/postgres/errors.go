package postgres

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

const (
	pqCheckViolation         = "23514"
	pqConnectionExceptionCls = "08"
)

// SQLState returns the PostgreSQL error code carried by err, or "" if err is not a pq error
func SQLState(err error) string {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return ""
	}
	return string(pqErr.Code)
}

// Constraint returns the violated constraint name, if any
func Constraint(err error) string {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return ""
	}
	return pqErr.Constraint
}

// IsCheckViolation checks if an error is a PostgreSQL check constraint violation
func IsCheckViolation(err error) bool {
	return SQLState(err) == pqCheckViolation
}

// IsConnectionException checks if an error belongs to the connection exception class (08xxx)
func IsConnectionException(err error) bool {
	if errors.Is(err, pq.ErrSSLNotSupported) {
		return true
	}
	return strings.HasPrefix(SQLState(err), pqConnectionExceptionCls)
}
