package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	host     string
	user     string
	password string
	port     string
	dbname   string
	sslmode  string
}

func (c Config) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.user, c.password, c.host, c.port, c.dbname, c.sslmode)
}

func NewConfig(host, user, password, port, dbname, sslmode string) Config {
	return Config{
		host:     host,
		user:     user,
		password: password,
		port:     port,
		dbname:   dbname,
		sslmode:  sslmode,
	}
}

func NewPool(ctx context.Context, config Config) (*pgxpool.Pool, error) {
	p, err := pgxpool.New(ctx, config.ConnStr())
	if err != nil {
		return nil, err
	}

	err = p.Ping(ctx)
	if err != nil {
		return nil, err
	}

	return p, nil
}

var (
	ErrNoRows       = errors.New("no rows in result set")
	ErrQueryRow     = errors.New("could not execute query")
	ErrStoreFailed  = errors.New("could not store data")
	ErrAlreadyExist = errors.New("device already exists")
)

// db is satisfied by both *pgxpool.Pool and pgx.Tx so that every query in
// this package can run either directly on the pool or inside a transaction.
type db interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Storage struct {
	pool *pgxpool.Pool
	db   db
}

func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool, db: pool}
}

func New(ctx context.Context, config Config) (*Storage, error) {
	pool, err := NewPool(ctx, config)
	if err != nil {
		return nil, err
	}

	return NewWithPool(pool), nil
}

// InTx runs fn against a Storage bound to a single transaction. A returned
// error rolls the whole unit of work back.
func (s *Storage) InTx(ctx context.Context, fn func(tx *Storage) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Storage{pool: s.pool, db: tx})
	})
}

func (s *Storage) Initialize(ctx context.Context) error {
	return s.createTables(ctx)
}

func (s *Storage) createTables(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS devices (
			device_id	TEXT NOT NULL,
			name		TEXT NOT NULL,
			zone		TEXT NOT NULL DEFAULT 'Unassigned',
			location	TEXT NULL,
			status		TEXT NOT NULL DEFAULT 'OFFLINE',
			created_on	timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			modified_on	timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT pkey_devices PRIMARY KEY (device_id)
		);

		CREATE TABLE IF NOT EXISTS sensor_readings (
			id			BIGSERIAL,
			device_id	TEXT NOT NULL,
			moisture	NUMERIC NOT NULL,
			temperature	NUMERIC NULL,
			humidity	NUMERIC NULL,
			sunlight	NUMERIC NOT NULL DEFAULT 0,
			time		timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT pkey_sensor_readings PRIMARY KEY (id)
		);

		CREATE TABLE IF NOT EXISTS command_log (
			command_id	TEXT NOT NULL,
			device_id	TEXT NOT NULL,
			command		TEXT NOT NULL,
			source		TEXT NOT NULL,
			created_on	timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT pkey_command_log PRIMARY KEY (command_id)
		);

		CREATE INDEX IF NOT EXISTS sensor_readings_device_time_idx ON sensor_readings (device_id, time DESC, id DESC);
		CREATE INDEX IF NOT EXISTS command_log_device_idx ON command_log (device_id, created_on DESC);
		CREATE INDEX IF NOT EXISTS devices_created_idx ON devices (created_on DESC);
	`)
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) Close() {
	s.pool.Close()
}
