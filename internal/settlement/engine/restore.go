package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/journal"
)

// Restore reconstrói um engine aplicando o journal em ordem sobre um estado
// vazio. O recorder das opções só passa a receber comandos novos.
func Restore(ctx context.Context, r journal.Reader, opts ...Option) (*Engine, error) {
	e := New(opts...)
	recs, err := r.Records(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.replay(rec); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) replay(rec journal.Record) error {
	if rec.Seq != e.seq+1 {
		return fmt.Errorf("journal gap: expected seq %d, got %d", e.seq+1, rec.Seq)
	}
	c, err := decode(rec)
	if err != nil {
		return err
	}
	if u, ok := c.(*upgradeCmd); ok {
		u.migrations = e.migrations
	}

	res, err := e.apply(c, rec.At, false)
	if err != nil {
		return fmt.Errorf("replay %s at seq %d: %w", rec.Op, rec.Seq, err)
	}
	if payouts, ok := res.([]domain.Payout); ok && len(rec.Result) > 0 {
		var recorded []domain.Payout
		if err := json.Unmarshal(rec.Result, &recorded); err != nil {
			return fmt.Errorf("decode resolve result at seq %d: %w", rec.Seq, err)
		}
		if !samePayouts(payouts, recorded) {
			return fmt.Errorf("replay of resolve at seq %d diverged from the recorded payouts", rec.Seq)
		}
	}
	return nil
}

func samePayouts(a, b []domain.Payout) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
