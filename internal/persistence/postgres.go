package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// PostgresDB implements Database over a shared *sql.DB connection pool, the
// same dual-mode (pooled vs. in-transaction) repository pattern as the
// teacher's postgres.go.
type PostgresDB struct {
	db *sql.DB

	articles ArticleRepository
	entities EntityRepository
	logs     ProcessingLogRepository
	edges    EdgeRepository
	stories  StoryRepository
	events   EventRepository
}

// queryer is satisfied by both *sql.DB and *sql.Tx, letting one repo struct
// serve both contexts.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Open creates a connection pool and verifies connectivity.
func Open(connectionString string, maxOpen, maxIdle int) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &PostgresDB{db: db}
	p.articles = &articleRepo{q: db}
	p.entities = &entityRepo{q: db}
	p.logs = &logRepo{q: db}
	p.edges = &edgeRepo{q: db}
	p.stories = &storyRepo{q: db}
	p.events = &eventRepo{q: db}
	return p, nil
}

func (p *PostgresDB) Articles() ArticleRepository             { return p.articles }
func (p *PostgresDB) Entities() EntityRepository               { return p.entities }
func (p *PostgresDB) ProcessingLogs() ProcessingLogRepository  { return p.logs }
func (p *PostgresDB) Edges() EdgeRepository                    { return p.edges }
func (p *PostgresDB) Stories() StoryRepository                 { return p.stories }
func (p *PostgresDB) Events() EventRepository                  { return p.events }

func (p *PostgresDB) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }
func (p *PostgresDB) Close() error                   { return p.db.Close() }

// Conn exposes the pooled *sql.DB for callers outside this package that need
// to construct a repository directly against it, such as vectorstore's
// pgvector-backed ANN search.
func (p *PostgresDB) Conn() *sql.DB { return p.db }

func (p *PostgresDB) BeginTx(ctx context.Context) (Transaction, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &postgresTx{
		tx:       tx,
		articles: &articleRepo{q: tx},
		entities: &entityRepo{q: tx},
		logs:     &logRepo{q: tx},
	}, nil
}

type postgresTx struct {
	tx       *sql.Tx
	articles ArticleRepository
	entities EntityRepository
	logs     ProcessingLogRepository
}

func (t *postgresTx) Articles() ArticleRepository            { return t.articles }
func (t *postgresTx) Entities() EntityRepository              { return t.entities }
func (t *postgresTx) ProcessingLogs() ProcessingLogRepository { return t.logs }
func (t *postgresTx) Commit() error                           { return t.tx.Commit() }
func (t *postgresTx) Rollback() error                         { return t.tx.Rollback() }
