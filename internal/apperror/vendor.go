package apperror

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// postgresCodes maps SQLSTATE codes to business codes.
var postgresCodes = map[string]Code{
	"23505": CodeDuplicateData,
	"23503": CodeForeignKeyViolation,
	"23502": CodeMissingField,
	"23514": CodeConstraintViolation,
	"23P01": CodeConstraintViolation,
	"22P02": CodeInvalidParameter,
	"22001": CodeValueTooLong,
	"22003": CodeInvalidParameter,
	"22007": CodeInvalidDate,
	"22008": CodeInvalidDate,
	"22012": CodeQueryFailed,
	"42501": CodeForbidden,
	"42P01": CodeQueryFailed,
	"42703": CodeQueryFailed,
	"42601": CodeQueryFailed,
	"42883": CodeQueryFailed,
	"40001": CodeConflict,
	"40P01": CodeConflict,
	"55P03": CodeConflict,
	"53300": CodeServiceUnavailable,
	"53200": CodeServiceUnavailable,
	"57014": CodeTimeout,
	"57P01": CodeDatabaseUnavailable,
	"57P03": CodeDatabaseUnavailable,
	"28P01": CodeDatabaseUnavailable,
	"28000": CodeDatabaseUnavailable,
	"3D000": CodeDatabaseUnavailable,
}

// postgresClasses is consulted when the exact SQLSTATE is not listed.
var postgresClasses = map[string]Code{
	"08": CodeDatabaseUnavailable,
	"22": CodeInvalidParameter,
	"23": CodeConstraintViolation,
	"28": CodeDatabaseUnavailable,
	"40": CodeConflict,
	"42": CodeQueryFailed,
	"53": CodeServiceUnavailable,
	"57": CodeDatabaseUnavailable,
}

type sentinelMapping struct {
	err  error
	code Code
}

// gormErrors maps gorm sentinel errors. Order matters only for wrapped chains.
var gormErrors = []sentinelMapping{
	{gorm.ErrRecordNotFound, CodeNotFound},
	{gorm.ErrDuplicatedKey, CodeDuplicateData},
	{gorm.ErrInvalidData, CodeInvalidParameter},
	{gorm.ErrInvalidField, CodeInvalidParameter},
	{gorm.ErrInvalidValue, CodeInvalidParameter},
	{gorm.ErrEmptySlice, CodeInvalidParameter},
	{gorm.ErrPrimaryKeyRequired, CodeMissingField},
	{gorm.ErrMissingWhereClause, CodeQueryFailed},
	{gorm.ErrInvalidTransaction, CodeQueryFailed},
	{gorm.ErrUnsupportedRelation, CodeQueryFailed},
	{gorm.ErrNotImplemented, CodeInternal},
	{gorm.ErrUnsupportedDriver, CodeInternal},
	{gorm.ErrInvalidDB, CodeDatabaseUnavailable},
}

// jwtErrors maps token validation failures. Expiry is checked before the
// generic claims error because jwt joins both for expired tokens.
var jwtErrors = []sentinelMapping{
	{jwt.ErrTokenExpired, CodeAuthTokenExpired},
	{jwt.ErrTokenNotValidYet, CodeAuthTokenNotYetValid},
	{jwt.ErrTokenUsedBeforeIssued, CodeAuthTokenNotYetValid},
	{jwt.ErrTokenInvalidAudience, CodeAuthInvalidAudience},
	{jwt.ErrTokenMalformed, CodeAuthTokenInvalid},
	{jwt.ErrTokenSignatureInvalid, CodeAuthTokenInvalid},
	{jwt.ErrTokenUnverifiable, CodeAuthTokenInvalid},
	{jwt.ErrTokenRequiredClaimMissing, CodeAuthTokenInvalid},
	{jwt.ErrTokenInvalidSubject, CodeAuthTokenInvalid},
	{jwt.ErrTokenInvalidClaims, CodeAuthTokenInvalid},
	{jwt.ErrInvalidKey, CodeAuthMisconfigured},
	{jwt.ErrInvalidKeyType, CodeAuthMisconfigured},
}

var contextErrors = []sentinelMapping{
	{context.DeadlineExceeded, CodeTimeout},
	{context.Canceled, CodeRequestCancelled},
}

// vendorCode translates a raw provider error into a business code.
func vendorCode(err error) (Code, Params, bool) {
	if err == nil {
		return "", Params{}, false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		params := Params{Field: pgErr.ColumnName, Resource: tableResource(pgErr.TableName)}
		if code, ok := postgresCodes[pgErr.Code]; ok {
			return code, params, true
		}
		if len(pgErr.Code) >= 2 {
			if code, ok := postgresClasses[pgErr.Code[:2]]; ok {
				return code, params, true
			}
		}
		return CodeQueryFailed, params, true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return CodeDatabaseUnavailable, Params{}, true
	}

	for _, table := range [][]sentinelMapping{contextErrors, gormErrors, jwtErrors} {
		for _, m := range table {
			if errors.Is(err, m.err) {
				return m.code, Params{}, true
			}
		}
	}
	return "", Params{}, false
}

var tableResources = map[string]string{
	"profiles":        "profile",
	"farms":           "farm",
	"farm_members":    "farm",
	"visitor_entries": "visitor",
	"system_logs":     "systemLog",
}

func tableResource(table string) string {
	return tableResources[table]
}
