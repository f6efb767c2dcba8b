package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskeeper/internal/model"
	"github.com/BuzzLyutic/taskeeper/internal/storage"
)

const taskColumns = `id, title, description, due_date, status, priority, created_at, updated_at`

// TaskAdapter stores tasks in the tasks table of a Postgres database.
type TaskAdapter struct {
	pool *pgxpool.Pool
}

func NewTaskAdapter(pool *pgxpool.Pool) *TaskAdapter {
	return &TaskAdapter{
		pool: pool,
	}
}

var _ storage.Adapter = (*TaskAdapter)(nil)

// Migrate creates the tasks table if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, storage.Schema); err != nil {
		return fmt.Errorf("migrate tasks table: %w", err)
	}
	return nil
}

func (a *TaskAdapter) Insert(ctx context.Context, task model.Task) error {
	rec := storage.NewRecord(task)
	_, err := a.pool.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.Title, rec.Description, rec.DueDate, rec.Status, rec.Priority, rec.CreatedAt, rec.UpdatedAt)
	return mapError(err)
}

func (a *TaskAdapter) FindByID(ctx context.Context, id string) (model.Task, bool, error) {
	row := a.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id)
	return scanOne(row)
}

func (a *TaskAdapter) Update(ctx context.Context, id string, patch storage.Patch) (model.Task, bool, error) {
	var dueDate *string
	if patch.DueDate != nil {
		s := model.FormatTime(*patch.DueDate)
		dueDate = &s
	}

	row := a.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    due_date = COALESCE($4, due_date),
		    status = COALESCE($5, status),
		    priority = COALESCE($6, priority),
		    updated_at = $7
		WHERE id = $1
		RETURNING `+taskColumns,
		id, patch.Title, patch.Description, dueDate, enumArg(patch.Status), enumArg(patch.Priority), patch.Stamp(),
	)
	return scanOne(row)
}

func (a *TaskAdapter) Remove(ctx context.Context, id string) error {
	_, err := a.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	return err
}

func (a *TaskAdapter) List(ctx context.Context) ([]model.Task, error) {
	rows, err := a.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []storage.Record
	for rows.Next() {
		var rec storage.Record
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return storage.DecodeAll(records)
}

func scanOne(row pgx.Row) (model.Task, bool, error) {
	var rec storage.Record
	err := scanRecord(row, &rec)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, err
	}

	t, err := rec.Task()
	if err != nil {
		return model.Task{}, false, err
	}
	return t, true, nil
}

func scanRecord(row pgx.Row, rec *storage.Record) error {
	return row.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.DueDate, &rec.Status, &rec.Priority, &rec.CreatedAt, &rec.UpdatedAt)
}

func enumArg[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

// mapError turns a unique violation (SQLSTATE 23505) into storage.ErrDuplicate.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.Detail, storage.ErrDuplicate)
	}
	return err
}
