package journal

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS ledger_journal (
	seq    BIGINT PRIMARY KEY,
	op     TEXT NOT NULL,
	at     TEXT NOT NULL,
	args   JSONB NOT NULL,
	result JSONB
)`

// PostgresStore persiste o journal no Postgres (lib/pq).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore garante a tabela e retorna o store.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return nil, errors.Wrap(err, "create postgres journal schema")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Append(ctx context.Context, recs ...Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin journal tx")
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range recs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_journal (seq, op, at, args, result)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (seq) DO NOTHING
		`, int64(r.Seq), r.Op, r.At.UTC().Format(timeLayout), string(r.Args), nullableJSON(r.Result))
		if err != nil {
			return errors.Wrapf(err, "insert journal record %d", r.Seq)
		}
	}
	return errors.Wrap(tx.Commit(), "commit journal tx")
}

func (s *PostgresStore) Records(ctx context.Context, after uint64) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, op, at, args::text, result::text
		FROM ledger_journal
		WHERE seq > $1
		ORDER BY seq
	`, int64(after))
	if err != nil {
		return nil, errors.Wrap(err, "query journal")
	}
	return scanRecords(rows)
}

func (s *PostgresStore) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM ledger_journal`).Scan(&seq); err != nil {
		return 0, errors.Wrap(err, "query last seq")
	}
	return uint64(seq.Int64), nil
}
