// Package sqlerr normalizes driver errors from lib/pq, pgx and the MySQL
// driver and maps them onto client-facing errs.HTTPError values.
package sqlerr

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Code is the driver-independent class of a database error
type Code string

const (
	Other               Code = "other"
	UniqueViolation     Code = "unique_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	NotNullViolation    Code = "not_null_violation"
	CheckViolation      Code = "check_violation"
	InvalidText         Code = "invalid_text_representation"
)

// Error is a normalized database error
type Error struct {
	Code           Code
	DatabaseCode   string
	Message        string
	TableName      string
	ColumnName     string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// postgres SQLSTATE classes, shared by lib/pq and pgx
var pgCodes = map[string]Code{
	"23505": UniqueViolation,
	"23503": ForeignKeyViolation,
	"23502": NotNullViolation,
	"23514": CheckViolation,
	"22P02": InvalidText,
}

// mysql server error numbers
var mysqlCodes = map[uint16]Code{
	1062: UniqueViolation,
	1451: ForeignKeyViolation,
	1452: ForeignKeyViolation,
	1048: NotNullViolation,
	3819: CheckViolation,
	1366: InvalidText,
}

// MapCode maps a postgres SQLSTATE onto a Code
func MapCode(sqlState string) Code {
	if c, ok := pgCodes[sqlState]; ok {
		return c
	}
	return Other
}

// Convert extracts a normalized Error from any supported driver error.
// It returns nil when err does not come from a known driver.
func Convert(err error) *Error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &Error{
			Code:           MapCode(string(pqErr.Code)),
			DatabaseCode:   string(pqErr.Code),
			Message:        pqErr.Message,
			TableName:      pqErr.Table,
			ColumnName:     pqErr.Column,
			ConstraintName: pqErr.Constraint,
			driverErr:      pqErr,
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{
			Code:           MapCode(pgErr.Code),
			DatabaseCode:   pgErr.Code,
			Message:        pgErr.Message,
			TableName:      pgErr.TableName,
			ColumnName:     pgErr.ColumnName,
			ConstraintName: pgErr.ConstraintName,
			driverErr:      pgErr,
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		code, ok := mysqlCodes[myErr.Number]
		if !ok {
			code = Other
		}
		return &Error{
			Code:         code,
			DatabaseCode: string(myErr.SQLState[:]),
			Message:      myErr.Message,
			driverErr:    myErr,
		}
	}

	return nil
}

// ErrCode reports the Code for err, or Other
func ErrCode(err error) Code {
	if e := Convert(err); e != nil {
		return e.Code
	}
	return Other
}
