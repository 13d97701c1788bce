package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

const pgErrUniqueViolation = "23505"

// dbFromContext returns the transaction stored in ctx, or base bound to ctx.
func dbFromContext(ctx context.Context, base *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return base.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// isDuplicateKey recognises unique violations with or without gorm's TranslateError.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// wrapWriteError maps unique violations to ports.ErrUniquenessConflict.
func wrapWriteError(err error, msg string) error {
	if isDuplicateKey(err) {
		return fmt.Errorf("%s: %w: %w", msg, ports.ErrUniquenessConflict, err)
	}
	return errs.Wrap(err, msg)
}

func paginate(query *gorm.DB, limit int, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
