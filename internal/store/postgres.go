package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"

	"github.com/jordigilh/uccompare/internal/model"
)

//go:embed migrations
var migrationsFS embed.FS

// Config holds Postgres connection settings, filled by the server from the
// storage section of the config file.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresStore owns the connection pool behind both the JobStore and
// SegmentStore contracts over Postgres, via the pgx stdlib driver and
// sqlx, with schema managed by golang-migrate from embedded SQL files.
// JobStore and SegmentStore both declare a two-arg Get method with
// different key types, so a single Go type cannot implement both; Jobs()
// and Segments() hand out thin typed views over the shared pool instead.
type PostgresStore struct {
	db *sqlx.DB
}

// Jobs returns the JobStore view over this connection pool.
func (s *PostgresStore) Jobs() *PostgresJobStore { return &PostgresJobStore{db: s.db} }

// Segments returns the SegmentStore view over this connection pool.
func (s *PostgresStore) Segments() *PostgresSegmentStore { return &PostgresSegmentStore{db: s.db} }

// PostgresJobStore implements JobStore.
type PostgresJobStore struct{ db *sqlx.DB }

// PostgresSegmentStore implements SegmentStore.
type PostgresSegmentStore struct{ db *sqlx.DB }

// NewPostgresStore opens a connection, runs pending migrations, and
// returns a ready PostgresStore.
func NewPostgresStore(ctx context.Context, cfg Config) (*PostgresStore, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(sqlDB, cfg.Database); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: sqlx.NewDb(sqlDB, "pgx")}, nil
}

func runMigrations(db *sql.DB, dbName string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	defer sourceDriver.Close()

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dbName, driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type jobRow struct {
	JobID              string       `db:"job_id"`
	DocIDA             string       `db:"doc_id_a"`
	DocIDB             string       `db:"doc_id_b"`
	FileNameA          string       `db:"file_name_a"`
	FileNameB          string       `db:"file_name_b"`
	Status             string       `db:"status"`
	CurrentSegment     int          `db:"current_segment"`
	CurrentSegmentName string       `db:"current_segment_name"`
	ProgressPct        float64      `db:"progress_pct"`
	ErrorMessage       string       `db:"error_message"`
	ResultBlob         []byte       `db:"result_blob"`
	RetryCount         int          `db:"retry_count"`
	CreatedAt          time.Time    `db:"created_at"`
	StartedAt          sql.NullTime `db:"started_at"`
	CompletedAt        sql.NullTime `db:"completed_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
}

func (r jobRow) toJob() model.Job {
	j := model.Job{
		JobID:              r.JobID,
		DocIDA:             r.DocIDA,
		DocIDB:             r.DocIDB,
		FileNameA:          r.FileNameA,
		FileNameB:          r.FileNameB,
		Status:             model.JobStatus(r.Status),
		CurrentSegment:     r.CurrentSegment,
		CurrentSegmentName: r.CurrentSegmentName,
		ProgressPct:        r.ProgressPct,
		ErrorMessage:       r.ErrorMessage,
		HasResult:          len(r.ResultBlob) > 0,
		RetryCount:         r.RetryCount,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.StartedAt.Valid {
		t := r.StartedAt.Time
		j.StartedAt = &t
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		j.CompletedAt = &t
	}
	return j
}

func (s *PostgresJobStore) Create(ctx context.Context, job model.Job) error {
	const q = `INSERT INTO jobs
		(job_id, doc_id_a, doc_id_b, file_name_a, file_name_b, status,
		 current_segment, current_segment_name, progress_pct, error_message,
		 retry_count, created_at, updated_at)
		VALUES (:job_id, :doc_id_a, :doc_id_b, :file_name_a, :file_name_b, :status,
		 :current_segment, :current_segment_name, :progress_pct, :error_message,
		 :retry_count, :created_at, :updated_at)`

	row := jobRow{
		JobID:              job.JobID,
		DocIDA:             job.DocIDA,
		DocIDB:             job.DocIDB,
		FileNameA:          job.FileNameA,
		FileNameB:          job.FileNameB,
		Status:             string(job.Status),
		CurrentSegment:     job.CurrentSegment,
		CurrentSegmentName: job.CurrentSegmentName,
		ProgressPct:        job.ProgressPct,
		ErrorMessage:       job.ErrorMessage,
		RetryCount:         job.RetryCount,
		CreatedAt:          job.CreatedAt,
		UpdatedAt:          job.UpdatedAt,
	}
	_, err := s.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *PostgresJobStore) Get(ctx context.Context, jobID string) (model.Job, error) {
	var row jobRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM jobs WHERE job_id = $1`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, ErrNotFound
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("get job: %w", err)
	}
	return row.toJob(), nil
}

// Update implements single-writer-per-job_id semantics (§4.9) via a
// row-locking transaction: SELECT ... FOR UPDATE, mutate in Go, write back.
func (s *PostgresJobStore) Update(ctx context.Context, jobID string, mutate func(*model.Job)) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var row jobRow
	err = tx.GetContext(ctx, &row, `SELECT * FROM jobs WHERE job_id = $1 FOR UPDATE`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock job: %w", err)
	}

	job := row.toJob()
	mutate(&job)
	job.UpdatedAt = time.Now()

	const q = `UPDATE jobs SET
		status = :status, current_segment = :current_segment,
		current_segment_name = :current_segment_name, progress_pct = :progress_pct,
		error_message = :error_message, retry_count = :retry_count,
		started_at = :started_at, completed_at = :completed_at, updated_at = :updated_at
		WHERE job_id = :job_id`

	updated := jobRow{
		JobID:              job.JobID,
		Status:             string(job.Status),
		CurrentSegment:     job.CurrentSegment,
		CurrentSegmentName: job.CurrentSegmentName,
		ProgressPct:        job.ProgressPct,
		ErrorMessage:       job.ErrorMessage,
		RetryCount:         job.RetryCount,
		UpdatedAt:          job.UpdatedAt,
	}
	if job.StartedAt != nil {
		updated.StartedAt = sql.NullTime{Time: *job.StartedAt, Valid: true}
	}
	if job.CompletedAt != nil {
		updated.CompletedAt = sql.NullTime{Time: *job.CompletedAt, Valid: true}
	}

	if _, err := tx.NamedExecContext(ctx, q, updated); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return tx.Commit()
}

func (s *PostgresJobStore) List(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	q := `SELECT * FROM jobs`
	args := []any{}
	if filter.Status != "" {
		q += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, filter.Offset)

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	out := make([]model.Job, len(rows))
	for i, r := range rows {
		out[i] = r.toJob()
	}
	return out, nil
}

func (s *PostgresJobStore) SetResult(ctx context.Context, jobID string, result model.ComparisonResult) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE jobs SET result_blob = $1 WHERE job_id = $2`, blob, jobID)
	if err != nil {
		return fmt.Errorf("set result: %w", err)
	}
	return nil
}

func (s *PostgresJobStore) GetResult(ctx context.Context, jobID string) (model.ComparisonResult, error) {
	var blob []byte
	err := s.db.GetContext(ctx, &blob, `SELECT result_blob FROM jobs WHERE job_id = $1`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ComparisonResult{}, ErrNotFound
	}
	if err != nil {
		return model.ComparisonResult{}, fmt.Errorf("get result: %w", err)
	}
	if len(blob) == 0 {
		return model.ComparisonResult{}, ErrNotFound
	}

	var result model.ComparisonResult
	if err := json.Unmarshal(blob, &result); err != nil {
		return model.ComparisonResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return result, nil
}

func (s *PostgresJobStore) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM segment_artifacts
		WHERE job_id IN (SELECT job_id FROM jobs WHERE status IN ($1, $2, $3) AND completed_at < $4)`,
		string(model.JobCompleted), string(model.JobFailed), string(model.JobCancelled), olderThan); err != nil {
		return 0, fmt.Errorf("purge segment artifacts: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM jobs
		WHERE status IN ($1, $2, $3) AND completed_at < $4`,
		string(model.JobCompleted), string(model.JobFailed), string(model.JobCancelled), olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// SegmentStore methods.

func (s *PostgresSegmentStore) Put(ctx context.Context, key SegmentKey, value []byte) error {
	const q = `INSERT INTO segment_artifacts (doc_id, job_id, segment_id, value_blob)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (doc_id, job_id, segment_id) DO UPDATE SET value_blob = EXCLUDED.value_blob`
	_, err := s.db.ExecContext(ctx, q, key.DocID, key.JobID, key.SegmentID, value)
	if err != nil {
		return fmt.Errorf("put segment: %w", err)
	}
	return nil
}

func (s *PostgresSegmentStore) Get(ctx context.Context, key SegmentKey) ([]byte, error) {
	var blob []byte
	err := s.db.GetContext(ctx, &blob,
		`SELECT value_blob FROM segment_artifacts WHERE doc_id = $1 AND job_id = $2 AND segment_id = $3`,
		key.DocID, key.JobID, key.SegmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get segment: %w", err)
	}
	return blob, nil
}

func (s *PostgresSegmentStore) Delete(ctx context.Context, key SegmentKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM segment_artifacts WHERE doc_id = $1 AND job_id = $2 AND segment_id = $3`,
		key.DocID, key.JobID, key.SegmentID)
	if err != nil {
		return fmt.Errorf("delete segment: %w", err)
	}
	return nil
}

func (s *PostgresSegmentStore) DeleteByJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM segment_artifacts WHERE job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("delete segments by job: %w", err)
	}
	return nil
}
