package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/prediction-ledger/internal/settlement/journal"
)

// StatsCache guarda no Redis as estatísticas agregadas servidas pela API.
// Cada entrada é versionada pela seq do engine em que foi calculada: depois
// de qualquer mutação a seq muda e a entrada antiga deixa de ser lida.
type StatsCache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *StatsCache { return &StatsCache{R: r, TTL: ttl} }

func keyMarket(marketID string, seq uint64) string {
	return "ledger:market_stats:" + marketID + ":" + strconv.FormatUint(seq, 10)
}

func keyLedger(seq uint64) string { return "ledger:stats:" + strconv.FormatUint(seq, 10) }

func (c *StatsCache) get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *StatsCache) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key, b, c.TTL).Err()
}

func (c *StatsCache) GetMarketStats(ctx context.Context, marketID string, seq uint64, dst any) (bool, error) {
	return c.get(ctx, keyMarket(marketID, seq), dst)
}

func (c *StatsCache) SetMarketStats(ctx context.Context, marketID string, seq uint64, v any) error {
	return c.set(ctx, keyMarket(marketID, seq), v)
}

func (c *StatsCache) GetLedgerStats(ctx context.Context, seq uint64, dst any) (bool, error) {
	return c.get(ctx, keyLedger(seq), dst)
}

func (c *StatsCache) SetLedgerStats(ctx context.Context, seq uint64, v any) error {
	return c.set(ctx, keyLedger(seq), v)
}

func (c *StatsCache) Name() string { return "stats_cache" }

// Deliver apaga as entradas que os registros gravados tornaram obsoletas,
// sem esperar o TTL.
func (c *StatsCache) Deliver(ctx context.Context, recs []journal.Record) error {
	keys := staleKeys(recs)
	if len(keys) == 0 {
		return nil
	}
	return c.R.Del(ctx, keys...).Err()
}

// staleKeys: o registro seq n invalida o que foi calculado em n-1.
func staleKeys(recs []journal.Record) []string {
	var keys []string
	for _, r := range recs {
		if r.Seq == 0 {
			continue
		}
		keys = append(keys, keyLedger(r.Seq-1))
		if id := r.MarketID(); id != "" {
			keys = append(keys, keyMarket(id, r.Seq-1))
		}
	}
	return keys
}
