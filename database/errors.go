package database

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATEs worth a reconnect: class 08 (connection exception),
// 57P03 cannot_connect_now and 53300 too_many_connections.
func retryableSQLState(code string) bool {
	return strings.HasPrefix(code, "08") || code == "57P03" || code == "53300"
}

// Driver messages that do not come with a typed error.
var connectionMessages = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"bad connection",
	"the database system is starting up",
}

// IsConnectionError reports whether err means the database could not be
// reached, as opposed to rejecting the request. Only these are retried.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return retryableSQLState(pgErr.Code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range connectionMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsNotFoundError reports gorm.ErrRecordNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports a unique-constraint violation. Drivers only
// report it as gorm.ErrDuplicatedKey with TranslateError, which New sets.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
