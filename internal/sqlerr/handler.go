package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/klm-wiki-api/internal/errs"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var constraintColumn = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// HandleError converts a low-level error into an *errs.HTTPError.
// Errors that are already HTTPErrors pass through unchanged; anything
// unrecognized becomes a generic 500.
func HandleError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found")
	}

	sqlErr := Convert(err)
	if sqlErr == nil {
		return errs.NewInternalServerError()
	}

	code := generateErrorCode(sqlErr.TableName, sqlErr.Code)
	message := formatUserFriendlyMessage(sqlErr)

	switch sqlErr.Code {
	case UniqueViolation:
		if column := extractColumn(sqlErr.ConstraintName); column != "" {
			message = strings.ReplaceAll(message, "identifier", humanizeText(column))
		}
		return errs.NewConflictError(message, code)
	case ForeignKeyViolation, CheckViolation, InvalidText:
		e := errs.NewBadRequestError(message, nil)
		e.Code = code
		return e
	case NotNullViolation:
		e := errs.NewBadRequestError(message, []errs.FieldError{
			{Field: strings.ToLower(sqlErr.ColumnName), Error: "is required"},
		})
		e.Code = code
		return e
	default:
		return errs.NewInternalServerError()
	}
}

// generateErrorCode builds codes like ARTICLE_ALREADY_EXISTS
func generateErrorCode(tableName string, code Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}
	domain := strings.ToUpper(singular(tableName))

	action := "ERROR"
	switch code {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidText:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entity := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entity)
	case UniqueViolation:
		return fmt.Sprintf("A %s with this identifier already exists", entity)
	case NotNullViolation:
		field := humanizeText(sqlErr.ColumnName)
		if field == "" {
			field = "field"
		}
		return fmt.Sprintf("The %s is required", field)
	case CheckViolation:
		if field := humanizeText(sqlErr.ColumnName); field != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", field)
		}
		return "One or more values do not meet required conditions"
	case InvalidText:
		return "One or more values have an invalid format"
	default:
		return "An error occurred while processing your request"
	}
}

func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}
	if tableName != "" {
		return humanizeText(singular(tableName))
	}
	return "record"
}

// extractColumn reads the column from constraint names like users_email_key
func extractColumn(constraintName string) string {
	if constraintName == "" {
		return ""
	}
	if m := constraintColumn.FindStringSubmatch(constraintName); len(m) > 1 {
		return m[1]
	}
	return ""
}

// singular handles the table names used here: articles, categories, useful_services
func singular(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "s") && len(name) > 1:
		return strings.TrimSuffix(name, "s")
	}
	return name
}

func humanizeText(text string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}
