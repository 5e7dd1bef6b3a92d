package journal

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS journal (
	seq    INTEGER PRIMARY KEY,
	op     TEXT NOT NULL,
	at     TEXT NOT NULL,
	args   TEXT NOT NULL,
	result TEXT
)`

// SQLiteStore persiste o journal num banco SQLite (modernc.org/sqlite).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore cria a tabela, se necessário, e retorna o store.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, errors.Wrap(err, "create sqlite journal schema")
	}
	return &SQLiteStore{db: db}, nil
}

// Append grava os registros numa única transação.
func (s *SQLiteStore) Append(ctx context.Context, recs ...Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin journal tx")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO journal (seq, op, at, args, result) VALUES (?, ?, ?, ?, ?) ON CONFLICT(seq) DO NOTHING`)
	if err != nil {
		return errors.Wrap(err, "prepare journal insert")
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.Seq, r.Op, r.At.UTC().Format(timeLayout), string(r.Args), nullableJSON(r.Result)); err != nil {
			return errors.Wrapf(err, "insert journal record %d", r.Seq)
		}
	}
	return errors.Wrap(tx.Commit(), "commit journal tx")
}

// Records lê os registros com seq > after.
func (s *SQLiteStore) Records(ctx context.Context, after uint64) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, op, at, args, result FROM journal WHERE seq > ? ORDER BY seq`, after)
	if err != nil {
		return nil, errors.Wrap(err, "query journal")
	}
	return scanRecords(rows)
}

// LastSeq retorna o maior seq gravado.
func (s *SQLiteStore) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM journal`).Scan(&seq); err != nil {
		return 0, errors.Wrap(err, "query last seq")
	}
	return uint64(seq.Int64), nil
}
