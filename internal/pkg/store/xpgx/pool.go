package xpgx

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool the store needs; pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Pool wraps a Querier with squirrel-aware helpers so store code never
// touches raw SQL strings.
type Pool struct {
	db Querier
}

func NewPool(db Querier) *Pool {
	return &Pool{db: db}
}

func Connect(ctx context.Context, dsn string) (*Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return &Pool{db: pool}, nil
}

func (p *Pool) Execx(ctx context.Context, query sq.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("query.ToSql: %w", err)
	}

	return p.db.Exec(ctx, sql, args...)
}

func (p *Pool) Queryx(ctx context.Context, query sq.Sqlizer) (pgx.Rows, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("query.ToSql: %w", err)
	}

	return p.db.Query(ctx, sql, args...)
}

// Getx runs query and scans the single resulting row into a T by db tag.
// Returns pgx.ErrNoRows when nothing matched.
func Getx[T any](ctx context.Context, p *Pool, query sq.Sqlizer) (*T, error) {
	rows, err := p.Queryx(ctx, query)
	if err != nil {
		return nil, err
	}

	selected, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		return nil, err
	}

	return selected, nil
}

// Selectx runs query and scans every resulting row into a []*T by db tag.
func Selectx[T any](ctx context.Context, p *Pool, query sq.Sqlizer) ([]*T, error) {
	rows, err := p.Queryx(ctx, query)
	if err != nil {
		return nil, err
	}

	selected, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[T])
	if err != nil {
		return nil, err
	}

	return selected, nil
}

// Scalarsx collects a single-column result set.
func Scalarsx[T any](ctx context.Context, p *Pool, query sq.Sqlizer) ([]T, error) {
	rows, err := p.Queryx(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[T])
}
