package repository

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"

	"github.com/UnknownOlympus/kakao-geocoder/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of *pgxpool.Pool used by the repository.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

type Repository struct {
	db  Database
	log *slog.Logger
}

type Interface interface {
	FetchTasksForGeocoding(ctx context.Context, limit int) ([]models.Task, error)
	UpdateTaskLocation(ctx context.Context, taskID int, doc models.GeocodeDocument) error
	IncrementFailureCount(ctx context.Context, taskID int, errMsg string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// BuildDSN returns a postgres connection URL with the credentials escaped.
func BuildDSN(host, port, user, password, name string) string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, port),
		Path:     name,
		RawQuery: "sslmode=disable",
	}

	return dsn.String()
}

// NewDatabase opens a pgx connection pool and verifies it with a ping.
func NewDatabase(ctx context.Context, host, port, user, password, name string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, BuildDSN(host, port, user, password, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
