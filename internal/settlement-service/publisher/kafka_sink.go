package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/journal"
	"github.com/radieske/prediction-ledger/pkg/contracts/events"
)

// MessageWriter é o subconjunto de *kafka.Writer usado aqui.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink publica cada registro do journal no tópico de journal e deriva
// os eventos de aposta travada e mercado liquidado. Writers nil são
// ignorados.
type KafkaSink struct {
	Journal        MessageWriter
	BetLocked      MessageWriter
	MarketResolved MessageWriter
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Deliver(ctx context.Context, recs []journal.Record) error {
	var (
		journalMsgs  []kafka.Message
		lockedMsgs   []kafka.Message
		resolvedMsgs []kafka.Message
	)
	for _, r := range recs {
		b, err := json.Marshal(events.LedgerRecord{Seq: r.Seq, Op: r.Op, At: r.At, Args: r.Args, Result: r.Result})
		if err != nil {
			return err
		}
		journalMsgs = append(journalMsgs, kafka.Message{Key: []byte(strconv.FormatUint(r.Seq, 10)), Value: b, Time: r.At})

		switch r.Op {
		case journal.OpPlaceBet:
			m, err := betLocked(r)
			if err != nil {
				return err
			}
			lockedMsgs = append(lockedMsgs, m)
		case journal.OpResolveMarket:
			m, err := marketResolved(r)
			if err != nil {
				return err
			}
			resolvedMsgs = append(resolvedMsgs, m)
		}
	}

	return errors.Join(
		write(ctx, s.Journal, journalMsgs),
		write(ctx, s.BetLocked, lockedMsgs),
		write(ctx, s.MarketResolved, resolvedMsgs),
	)
}

func write(ctx context.Context, w MessageWriter, msgs []kafka.Message) error {
	if w == nil || len(msgs) == 0 {
		return nil
	}
	return w.WriteMessages(ctx, msgs...)
}

// betLocked usa o resultado registrado (a aposta criada), que já traz o
// endereço canônico da conta.
func betLocked(r journal.Record) (kafka.Message, error) {
	var bet domain.Bet
	if err := json.Unmarshal(r.Result, &bet); err != nil {
		return kafka.Message{}, err
	}
	b, err := json.Marshal(events.BetLocked{
		BetID:      bet.ID,
		Account:    bet.Account,
		MarketID:   bet.MarketID,
		Outcome:    bet.OutcomeIndex,
		Amount:     bet.Amount,
		JournalSeq: r.Seq,
		TsUnixMs:   r.At.UnixMilli(),
	})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: []byte(bet.MarketID), Value: b, Time: r.At}, nil
}

func marketResolved(r journal.Record) (kafka.Message, error) {
	var args struct {
		MarketID string `json:"market_id"`
		Winner   int    `json:"winner"`
	}
	if err := json.Unmarshal(r.Args, &args); err != nil {
		return kafka.Message{}, err
	}
	var payouts []domain.Payout
	if err := json.Unmarshal(r.Result, &payouts); err != nil {
		return kafka.Message{}, err
	}

	ev := events.MarketResolved{
		MarketID:       args.MarketID,
		WinningOutcome: args.Winner,
		Payouts:        make([]events.Payout, 0, len(payouts)),
		JournalSeq:     r.Seq,
		Ts:             r.At,
	}
	for _, p := range payouts {
		ev.Payouts = append(ev.Payouts, events.Payout{BetID: p.BetID, Account: p.Account, Amount: p.Amount, Won: p.Won, Refund: p.Refund})
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: []byte(args.MarketID), Value: b, Time: r.At}, nil
}
