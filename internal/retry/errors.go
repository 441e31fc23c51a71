package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// TransientError marks an error as worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks an error that will fail the same way on every attempt.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// StatusError carries an HTTP status code from a remote call.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("status %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("status %d", e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

// ErrQuotaExceeded is returned when local storage has no room left.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Transient wraps err so IsTransient reports true. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Permanent wraps err so IsTransient reports false. A nil err stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsTransient reports whether retrying the operation that produced err
// could succeed. Unknown errors are treated as permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Explicit markers win over anything they wrap.
	var perm *PermanentError
	if errors.As(err, &perm) {
		return false
	}
	var tr *TransientError
	if errors.As(err, &tr) {
		return true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) || errors.Is(err, syscall.ENOSPC) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return transientStatus(status.Code)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientSQLState(pgErr.Code)
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"network", "timeout", "econnrefused", "connection refused"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

func transientStatus(code int) bool {
	switch {
	case code == 429, code == 408:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

// transientSQLState classifies Postgres SQLSTATE codes by class.
func transientSQLState(code string) bool {
	if len(code) < 2 {
		return false
	}
	switch code[:2] {
	case "08": // connection exception
		return true
	case "53": // insufficient resources
		return code != "53100" // disk full
	case "57": // operator intervention (admin shutdown, cannot connect now)
		return code != "57014" // query canceled
	case "40": // serialization failure, deadlock
		return true
	default:
		return false
	}
}
