// Package repository provides owner-scoped data access for every entity.
package repository

import (
	"context"
	"errors"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// translate maps gorm errors to AppErrors. Errors that already are AppErrors pass through.
func translate(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	if isUniqueConstraintError(err) {
		return models.NewConflictError(resource + " already exists")
	}
	return models.NewInternalError(err)
}

// traced runs fn inside a repository span.
func traced(ctx context.Context, method, table string, fn func(ctx context.Context) error) error {
	ctx, span := observability.StartRepositorySpan(ctx, method, table)
	err := fn(ctx)
	observability.EndSpan(span, err)
	return err
}

// uniqueIDs drops zero and repeated ids, keeping first-seen order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
