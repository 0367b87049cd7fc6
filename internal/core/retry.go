package core

import (
	"database/sql/driver"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL client error numbers for a connection dropped by the server.
const (
	mysqlServerGone = 2006
	mysqlServerLost = 2013
)

// isLostConnection reports whether err means the connection died and the
// statement may be sent again on a fresh one.
func isLostConnection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlServerGone || myErr.Number == mysqlServerLost
	}
	return false
}

// retryable reports whether a failed attempt may be sent again. sent is
// false when the failure happened before the statement reached the server.
// A sent write is retried only on driver.ErrBadConn, which drivers return
// when the statement was not executed.
func retryable(err error, op string, sent bool) bool {
	if !isLostConnection(err) {
		return false
	}
	if !sent || op == "SELECT" {
		return true
	}
	return errors.Is(err, driver.ErrBadConn)
}
