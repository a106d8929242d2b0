package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pull_samples (
		id TEXT PRIMARY KEY,
		org TEXT NOT NULL,
		repo TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		pulls INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pull_samples_org_repo_timestamp ON pull_samples(org, repo, timestamp);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// AppendSample appends one observation of a repository's pull counter
func (s *sqliteStorage) AppendSample(ctx context.Context, sample *domain.Sample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pull_samples (id, org, repo, timestamp, pulls)
		VALUES (?, ?, ?, ?, ?)
	`, sample.ID, sample.Org, sample.Repo, sample.Timestamp, sample.Pulls)
	return err
}

// OldestSince returns the earliest sample with a timestamp strictly after since
func (s *sqliteStorage) OldestSince(ctx context.Context, org, repo string, since time.Time) (*domain.Sample, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org, repo, timestamp, pulls
		FROM pull_samples
		WHERE org = ? AND repo = ? AND timestamp > ?
		ORDER BY timestamp ASC
		LIMIT 1
	`, org, repo, since)
	return scanSample(row)
}

// LatestSample returns the most recent sample of org/repo
func (s *sqliteStorage) LatestSample(ctx context.Context, org, repo string) (*domain.Sample, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org, repo, timestamp, pulls
		FROM pull_samples
		WHERE org = ? AND repo = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`, org, repo)
	return scanSample(row)
}

// ListSamples returns all samples after since, ascending by timestamp
func (s *sqliteStorage) ListSamples(ctx context.Context, org, repo string, since time.Time) ([]*domain.Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org, repo, timestamp, pulls
		FROM pull_samples
		WHERE org = ? AND repo = ? AND timestamp > ?
		ORDER BY timestamp ASC
	`, org, repo, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*domain.Sample
	for rows.Next() {
		var sample domain.Sample
		if err := rows.Scan(&sample.ID, &sample.Org, &sample.Repo, &sample.Timestamp, &sample.Pulls); err != nil {
			return nil, err
		}
		samples = append(samples, &sample)
	}
	return samples, rows.Err()
}

// Close closes the database connection
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

func scanSample(row *sql.Row) (*domain.Sample, error) {
	var sample domain.Sample
	err := row.Scan(&sample.ID, &sample.Org, &sample.Repo, &sample.Timestamp, &sample.Pulls)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sample, nil
}
