package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger stores rows in an append-only expenses table. ReadAll
// synthesizes the header row so the gateway boundary is identical to
// the spreadsheet backend.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

func NewPostgresLedger(ctx context.Context, databaseURL string) (*PostgresLedger, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	l := &PostgresLedger{pool: pool}
	if err := l.migrate(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *PostgresLedger) Close() {
	l.pool.Close()
}

func (l *PostgresLedger) migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS expenses (
			id BIGSERIAL PRIMARY KEY,
			inserted_at TEXT NOT NULL,
			amount TEXT NOT NULL,
			category TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			expense_date TEXT NOT NULL,
			paid_by TEXT NOT NULL,
			refer_to TEXT NOT NULL,
			inserted_by TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Append(ctx context.Context, row Row) error {
	v := row.Values()
	_, err := l.pool.Exec(ctx, `
		INSERT INTO expenses (inserted_at, amount, category, description, expense_date, paid_by, refer_to, inserted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v[ColTimestamp], v[ColAmount], v[ColCategory], v[ColDescription],
		v[ColDate], v[ColPaidBy], v[ColReferTo], v[ColInsertedBy],
	)
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

func (l *PostgresLedger) ReadAll(ctx context.Context) ([][]string, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT inserted_at, amount, category, description, expense_date, paid_by, refer_to, inserted_by
		FROM expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	defer rows.Close()

	all := [][]string{append([]string(nil), Header...)}
	for rows.Next() {
		row := make([]string, len(Header))
		if err := rows.Scan(&row[ColTimestamp], &row[ColAmount], &row[ColCategory], &row[ColDescription],
			&row[ColDate], &row[ColPaidBy], &row[ColReferTo], &row[ColInsertedBy]); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		all = append(all, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return all, nil
}

func (l *PostgresLedger) DeleteRow(ctx context.Context, index int) error {
	// Row 1 is the synthetic header; data row N sits at OFFSET N-2 of
	// the id ordering.
	if index < 2 {
		return fmt.Errorf("row %d is not a data row", index)
	}

	tag, err := l.pool.Exec(ctx, `
		DELETE FROM expenses WHERE id = (
			SELECT id FROM expenses ORDER BY id OFFSET $1 LIMIT 1
		)`, index-2)
	if err != nil {
		return fmt.Errorf("failed to delete row %d: %w", index, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("row %d not found", index)
	}
	return nil
}
