// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services to distinguish between different failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row, or when a
// conditional update finds nothing to update.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a UNIQUE
// constraint (MySQL error 1062).  Services translate it into a conflict.
var ErrDuplicate = errors.New("duplicate entry")

const mysqlDuplicateEntry = 1062

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		if me.Number == mysqlDuplicateEntry {
			return ErrDuplicate
		}
	}
	return err
}
