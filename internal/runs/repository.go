package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	UpdateRun(ctx context.Context, run *Run) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const runColumns = `id, input_path, output_path, names, status, frames_total, frames_written, frames_skipped, error, created_at, updated_at`

func (r *SQLiteRepository) CreateRun(ctx context.Context, run *Run) error {
	names, err := json.Marshal(namesOrEmpty(run.Names))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.InputPath, nullString(run.OutputPath), string(names), run.Status,
		run.FramesTotal, run.FramesWritten, run.FramesSkipped, nullString(run.Error),
		formatTime(run.CreatedAt), formatTime(run.UpdatedAt))
	return err
}

func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// UpdateRun stores the status, counts and error of run.
func (r *SQLiteRepository) UpdateRun(ctx context.Context, run *Run) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET output_path = ?, status = ?, frames_total = ?, frames_written = ?,
			frames_skipped = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, nullString(run.OutputPath), run.Status, run.FramesTotal, run.FramesWritten,
		run.FramesSkipped, nullString(run.Error), formatTime(run.UpdatedAt), run.ID)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var outputPath, errMsg sql.NullString
	var names, createdAt, updatedAt string

	err := row.Scan(&run.ID, &run.InputPath, &outputPath, &names, &run.Status,
		&run.FramesTotal, &run.FramesWritten, &run.FramesSkipped, &errMsg, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	run.OutputPath = outputPath.String
	run.Error = errMsg.String
	if err := json.Unmarshal([]byte(names), &run.Names); err != nil {
		return nil, err
	}
	run.CreatedAt = parseTime(createdAt)
	run.UpdatedAt = parseTime(updatedAt)
	return &run, nil
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteLayout matches datetime('now').
const sqliteLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(sqliteLayout, s)
	return t
}

func namesOrEmpty(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
