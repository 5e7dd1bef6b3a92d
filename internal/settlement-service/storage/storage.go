package storage

import (
	"context"
	"fmt"

	"github.com/radieske/prediction-ledger/internal/settlement/journal"
	"github.com/radieske/prediction-ledger/internal/shared/config"
	"github.com/radieske/prediction-ledger/internal/shared/db"
)

// OpenJournal abre o store configurado em JOURNAL_DRIVER. O close
// retornado libera a conexão (no-op para memory).
func OpenJournal(ctx context.Context, cfg config.Config) (journal.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.JournalDriver {
	case "memory":
		return journal.NewMemoryStore(), noop, nil
	case "sqlite":
		sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		s, err := journal.NewSQLiteStore(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return s, sqlDB.Close, nil
	case "postgres":
		pg, err := db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		s, err := journal.NewPostgresStore(ctx, pg)
		if err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		return s, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown journal driver %q", cfg.JournalDriver)
	}
}
