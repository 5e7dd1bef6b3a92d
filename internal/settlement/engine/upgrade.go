package engine

import (
	"fmt"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
)

// RegisterMigration adiciona uma migração depois da construção.
func (e *Engine) RegisterMigration(m Migration) error {
	if m.Version <= 0 || m.Apply == nil {
		return fmt.Errorf("%w: migration %d (%s) is incomplete", domain.ErrInvalidUpgrade, m.Version, m.Name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.migrations[m.Version]; dup {
		return fmt.Errorf("%w: migration %d already registered", domain.ErrInvalidUpgrade, m.Version)
	}
	e.migrations[m.Version] = m
	return nil
}

// Upgrade aplica as migrações até version. Roda sob o lock exclusivo, então
// nunca concorre com um Resolve; ou todas as migrações passam ou o estado
// fica como estava.
func (e *Engine) Upgrade(version int) (int, error) {
	res, err := e.exec(upgradeCmd{Version: version, migrations: e.snapshotMigrations()})
	if err != nil {
		return 0, err
	}
	return res.(UpgradeResult).Version, nil
}

// Version retorna a versão atual do estado.
func (e *Engine) Version() (int, error) {
	return read(e, func(s *State) int { return s.Version })
}

func (e *Engine) snapshotMigrations() map[int]Migration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[int]Migration, len(e.migrations))
	for v, m := range e.migrations {
		out[v] = m
	}
	return out
}
