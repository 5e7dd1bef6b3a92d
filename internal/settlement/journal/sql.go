package journal

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const timeLayout = time.RFC3339Nano

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		var (
			r      Record
			at     string
			args   string
			result sql.NullString
		)
		if err := rows.Scan(&r.Seq, &r.Op, &at, &args, &result); err != nil {
			return nil, errors.Wrap(err, "scan journal record")
		}
		t, err := time.Parse(timeLayout, at)
		if err != nil {
			return nil, errors.Wrapf(err, "parse time of record %d", r.Seq)
		}
		r.At = t
		r.Args = json.RawMessage(args)
		if result.Valid && result.String != "" {
			r.Result = json.RawMessage(result.String)
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate journal records")
}

func nullableJSON(raw json.RawMessage) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
