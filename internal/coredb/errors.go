package coredb

import (
	"errors"
	"strings"

	sqlite3 "modernc.org/sqlite/lib"
)

// codeError matches modernc.org/sqlite error types exposed by the driver.
type codeError interface {
	Code() int
}

// IsBusy reports whether err means another process holds the database lock.
// hb treats the history as best effort in that case.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder codeError
	if errors.As(err, &coder) {
		code := coder.Code() & 0xff
		if code == int(sqlite3.SQLITE_BUSY) || code == int(sqlite3.SQLITE_LOCKED) {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked")
}
