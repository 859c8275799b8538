package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// timeLayout is fixed-width so ORDER BY on the text column is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, status, language, audio_path, text_path, tokens_path, output_path,
    decision_log, words, tokens, unknown, blocks, inverted, overlap, kind_counts,
    error_message, started_at, finished_at`

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts or replaces a run. A run without an ID is assigned a new one.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = StatusSucceeded
	}
	now := time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = now
	}

	var kinds any
	if len(run.KindCounts) > 0 {
		data, err := json.Marshal(run.KindCounts)
		if err != nil {
			return fmt.Errorf("marshal kind counts: %w", err)
		}
		kinds = string(data)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO runs (`+runColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Status),
		nullableString(run.Language),
		nullableString(run.AudioPath),
		nullableString(run.TextPath),
		nullableString(run.TokensPath),
		nullableString(run.OutputPath),
		nullableString(run.DecisionLog),
		run.Words,
		run.Tokens,
		run.Unknown,
		run.Blocks,
		run.Inverted,
		run.Overlap,
		kinds,
		nullableString(run.ErrorMessage),
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Get fetches a run by identifier or unique identifier prefix. It returns
// nil when nothing matches.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("run id required")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ORDER BY started_at DESC LIMIT 2`,
		stripLikeWildcards(id)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	switch len(runs) {
	case 0:
		return nil, nil
	case 1:
		return &runs[0], nil
	default:
		if runs[0].ID == id {
			return &runs[0], nil
		}
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// Recent lists the newest runs first. A non-positive limit returns all runs.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		status      string
		language    sql.NullString
		audioPath   sql.NullString
		textPath    sql.NullString
		tokensPath  sql.NullString
		outputPath  sql.NullString
		decisionLog sql.NullString
		kinds       sql.NullString
		errorMsg    sql.NullString
		startedAt   string
		finishedAt  string
	)
	if err := scanner.Scan(
		&run.ID,
		&status,
		&language,
		&audioPath,
		&textPath,
		&tokensPath,
		&outputPath,
		&decisionLog,
		&run.Words,
		&run.Tokens,
		&run.Unknown,
		&run.Blocks,
		&run.Inverted,
		&run.Overlap,
		&kinds,
		&errorMsg,
		&startedAt,
		&finishedAt,
	); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.Language = language.String
	run.AudioPath = audioPath.String
	run.TextPath = textPath.String
	run.TokensPath = tokensPath.String
	run.OutputPath = outputPath.String
	run.DecisionLog = decisionLog.String
	run.ErrorMessage = errorMsg.String
	if kinds.Valid && kinds.String != "" {
		if err := json.Unmarshal([]byte(kinds.String), &run.KindCounts); err != nil {
			return nil, fmt.Errorf("decode kind counts for %s: %w", run.ID, err)
		}
	}
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at for %s: %w", run.ID, err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at for %s: %w", run.ID, err)
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func stripLikeWildcards(value string) string {
	r := strings.NewReplacer("%", "", "_", "")
	return r.Replace(value)
}
