package journal

import (
	"context"
	"sync"
)

// MemoryStore guarda o journal em memória. Útil em testes e no modo local.
type MemoryStore struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemoryStore cria um store vazio.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Append adiciona registros ignorando seqs já gravados.
func (m *MemoryStore) Append(ctx context.Context, recs ...Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		if n := len(m.recs); n > 0 && r.Seq <= m.recs[n-1].Seq {
			continue
		}
		m.recs = append(m.recs, r)
	}
	return nil
}

// Records retorna os registros com seq > after.
func (m *MemoryStore) Records(ctx context.Context, after uint64) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Record{}
	for _, r := range m.recs {
		if r.Seq > after {
			out = append(out, r)
		}
	}
	return out, nil
}

// LastSeq retorna o maior seq gravado (0 se vazio).
func (m *MemoryStore) LastSeq(ctx context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.recs) == 0 {
		return 0, nil
	}
	return m.recs[len(m.recs)-1].Seq, nil
}
