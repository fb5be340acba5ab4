package db

import (
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err is a unique constraint failure on either driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || pkgerrors.IsUniqueViolation(err) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a foreign key failure on either driver.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Translate maps storage failures onto the typed error taxonomy. notFound is
// the message used when no row matched.
func Translate(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case IsNotFound(err):
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound).WithMessages(notFound)
	case IsUniqueViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "record already exists").WithMessages("A record with the same unique value already exists")
	case IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "record is referenced").WithMessages("The record is referenced by other records")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "database error")
	}
}
