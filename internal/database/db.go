package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/jmoiron/sqlx"
	"github.com/klm-wiki-api/internal/config"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	pgxzero "github.com/jackc/pgx-zerolog"
)

// DB wraps the sqlx connection with the dialect it speaks
type DB struct {
	*sqlx.DB
	Dialect Dialect
	log     zerolog.Logger
}

// New opens a connection pool for the configured driver and pings it
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	driverName, dsn, dialect, err := driverSource(cfg, log)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	// Configure connection pool
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	db := Wrap(conn, dialect, log)
	db.log.Info().
		Str("driver", cfg.Driver).
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Database connection established")

	return db, nil
}

// Wrap adopts an already opened connection
func Wrap(conn *sqlx.DB, dialect Dialect, log zerolog.Logger) *DB {
	return &DB{
		DB:      conn,
		Dialect: dialect,
		log:     log.With().Str("component", "database").Logger(),
	}
}

// driverSource resolves the sql driver name and DSN for cfg
func driverSource(cfg *config.DatabaseConfig, log zerolog.Logger) (string, string, Dialect, error) {
	switch cfg.Driver {
	case "postgres":
		return "postgres", postgresDSN(cfg), Postgres, nil

	case "pgx":
		connConfig, err := pgx.ParseConfig(postgresDSN(cfg))
		if err != nil {
			return "", "", "", errors.Wrap(err, "failed to parse pgx config")
		}
		level := tracelog.LogLevelWarn
		if log.GetLevel() <= zerolog.DebugLevel {
			level = tracelog.LogLevelDebug
		}
		connConfig.Tracer = &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(log.With().Str("component", "pgx").Logger()),
			LogLevel: level,
		}
		// RegisterConnConfig returns a name usable as the DSN of the "pgx" driver
		return "pgx", stdlib.RegisterConnConfig(connConfig), Postgres, nil

	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.MultiStatements = true
		// report matched rows so an UPDATE with unchanged values still counts as found
		mc.ClientFoundRows = true
		return "mysql", mc.FormatDSN(), MySQL, nil

	default:
		return "", "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func postgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)
}

// HealthCheck verifies the database connection is healthy
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// InTx runs fn inside a transaction, rolling back when fn fails
func (db *DB) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit transaction")
}
