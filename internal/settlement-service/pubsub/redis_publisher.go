package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/journal"
	"github.com/radieske/prediction-ledger/pkg/contracts/events"
)

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}

// Publisher publica um payload num canal.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// StatsReader lê as estatísticas atuais de um mercado.
type StatsReader interface {
	MarketStats(id string) (domain.MarketStats, error)
}

// MarketSink publica um MarketUpdate por mercado tocado no lote, consumido
// pelo /ws das instâncias do serviço.
type MarketSink struct {
	Stats   StatsReader
	Pub     Publisher
	Channel string
}

func (s *MarketSink) Name() string { return "redis_pubsub" }

func (s *MarketSink) Deliver(ctx context.Context, recs []journal.Record) error {
	// último seq por mercado, em ordem de primeira aparição
	var order []string
	last := map[string]journal.Record{}
	for _, r := range recs {
		id := r.MarketID()
		if id == "" {
			continue
		}
		if _, ok := last[id]; !ok {
			order = append(order, id)
		}
		last[id] = r
	}

	for _, id := range order {
		st, err := s.Stats.MarketStats(id)
		if err != nil {
			return err
		}
		b, err := json.Marshal(Update(st, last[id]))
		if err != nil {
			return err
		}
		if err := s.Pub.Publish(ctx, s.Channel, b); err != nil {
			return err
		}
	}
	return nil
}

// Update monta o evento de atualização a partir das estatísticas.
func Update(st domain.MarketStats, rec journal.Record) events.MarketUpdate {
	up := events.MarketUpdate{
		MarketID:    st.MarketID,
		Status:      string(st.Status),
		Outcomes:    make([]events.OutcomePrice, 0, len(st.Outcomes)),
		TotalVolume: st.TotalVolume,
		UpdatedAt:   rec.At,
		Version:     rec.Seq,
	}
	for _, o := range st.Outcomes {
		up.Outcomes = append(up.Outcomes, events.OutcomePrice{Label: o.Label, Pool: o.Pool, Price: o.Price})
	}
	return up
}
