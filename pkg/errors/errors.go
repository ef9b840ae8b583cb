// Package errors classifies persistence failures into the kinds the API
// reports: connectivity, constraint, not-found and internal.
package errors

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind error category
type Kind int

const (
	KindInternal Kind = iota
	KindConnectivity
	KindConstraint
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindConstraint:
		return "constraint"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Recoverable reports whether the user can fix the request and resubmit.
// Connectivity and internal failures abort the action.
func (k Kind) Recoverable() bool {
	return k == KindConstraint || k == KindNotFound
}

// SQLSTATE codes
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeNotNullViolation    = "23502"
)

// Classify maps err to its Kind
func Classify(err error) Kind {
	if err == nil {
		return KindInternal
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return KindConstraint
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return KindConnectivity
		}
		return KindInternal
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err) {
		return KindConnectivity
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return KindConnectivity
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}

	return KindInternal
}

// PgCode returns the SQLSTATE carried by err, or "".
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports a 23505 error, optionally on a specific constraint.
func IsUniqueViolation(err error, constraint ...string) bool {
	return isCode(err, CodeUniqueViolation, constraint)
}

// IsForeignKeyViolation reports a 23503 error, optionally on a specific constraint.
func IsForeignKeyViolation(err error, constraint ...string) bool {
	return isCode(err, CodeForeignKeyViolation, constraint)
}

func isCode(err error, code string, constraint []string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	if len(constraint) == 0 {
		return true
	}
	for _, c := range constraint {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}
