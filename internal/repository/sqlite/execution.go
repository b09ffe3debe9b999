package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/piston-go/internal/apperror"
	"github.com/sakif/piston-go/internal/model"
	"github.com/sakif/piston-go/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Compile-time check that DB satisfies the repository interface.
var _ repository.ExecutionRepository = (*DB)(nil)

const selectColumns = `id, language, version, status, code, signal, stdout, stderr, output, compile_code, created_at`

// Create assigns an ID and timestamp to exec and inserts it.
func (db *DB) Create(ctx context.Context, exec *model.Execution) error {
	exec.ID = xid.New().String()
	exec.CreatedAt = time.Now().UTC()

	var compileCode sql.NullInt64
	if exec.CompileCode != nil {
		compileCode = sql.NullInt64{Int64: int64(*exec.CompileCode), Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO executions (`+selectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exec.ID,
		exec.Language,
		exec.Version,
		exec.Status,
		exec.Code,
		exec.Signal,
		exec.Stdout,
		exec.Stderr,
		exec.Output,
		compileCode,
		exec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating execution: %w", err)
	}
	return nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.Execution, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM executions WHERE id = ?`,
		id,
	)

	exec, err := scanExecution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("execution", id)
		}
		return nil, fmt.Errorf("sqlite: getting execution %s: %w", id, err)
	}
	return exec, nil
}

// List returns executions newest first. Limit is clamped to 1..100 (default 20).
//
// Ordering is by created_at. xid order only breaks ties: two CLI processes in the
// same second get IDs ordered by process ID, not by when they ran.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Execution, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := max(opts.Offset, 0)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+selectColumns+`
		 FROM executions
		 WHERE (? = '' OR language = ?)
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		opts.Language, opts.Language,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing executions: %w", err)
	}
	defer rows.Close()

	execs := make([]model.Execution, 0, limit)
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning execution row: %w", err)
		}
		execs = append(execs, *exec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating executions: %w", err)
	}
	return execs, nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM executions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting execution %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("execution", id)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExecution(s scanner) (*model.Execution, error) {
	var (
		exec        model.Execution
		compileCode sql.NullInt64
	)
	err := s.Scan(
		&exec.ID,
		&exec.Language,
		&exec.Version,
		&exec.Status,
		&exec.Code,
		&exec.Signal,
		&exec.Stdout,
		&exec.Stderr,
		&exec.Output,
		&compileCode,
		&exec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if compileCode.Valid {
		code := int(compileCode.Int64)
		exec.CompileCode = &code
	}
	return &exec, nil
}
