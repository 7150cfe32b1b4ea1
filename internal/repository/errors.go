// Package repository holds the SQL access layer for the catalog (airlines,
// features, implementations) and for user accounts.  Sentinel errors let
// handlers choose a status code without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrAirlineNotFound        = errors.New("airline not found")
	ErrFeatureNotFound        = errors.New("feature not found")
	ErrImplementationNotFound = errors.New("implementation not found")
	ErrUserNotFound           = errors.New("user not found")

	// ErrDuplicate is returned when a unique key (airline name, feature
	// name, airline/feature pair, user email) already exists.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrConflict is returned when a foreign key points at a missing row.
	ErrConflict = errors.New("conflict")
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlForeignKeyChild = 1452
)

// translate maps MySQL constraint violations onto the sentinels above and
// passes every other error through untouched.
func translate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return ErrDuplicate
		case mysqlForeignKeyChild:
			return ErrConflict
		}
	}
	return err
}
