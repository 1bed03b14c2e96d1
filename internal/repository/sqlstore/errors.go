package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"whiskr/internal/repository"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// wrapErr classifies driver errors into repository sentinels, keeping op as context.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, repository.ErrConflict)
		case pgForeignKeyViolation, pgInvalidText:
			return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed: unique"):
		return fmt.Errorf("%s: %w", op, repository.ErrConflict)
	case strings.Contains(msg, "foreign key constraint"):
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return nil
}

// escapeLike escapes LIKE wildcards so search text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
