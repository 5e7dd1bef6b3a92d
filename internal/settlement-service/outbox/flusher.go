package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/prediction-ledger/internal/settlement/journal"
)

// Sink recebe registros já persistidos. Falhas são logadas e não bloqueiam
// o journal: a entrega é best-effort.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, recs []journal.Record) error
}

// Flusher drena o outbox do engine fora do lock, grava no store e depois
// repassa aos sinks. Callbacks de métricas são opcionais.
type Flusher struct {
	Log      *zap.Logger
	Outbox   *journal.Outbox
	Store    journal.Store
	Sinks    []Sink
	Interval time.Duration

	OnFlushed func(n int)        // métricas (registros gravados)
	OnError   func(stage string) // métricas por fase
}

// Run roda até o contexto ser cancelado; na saída faz um último flush.
func (f *Flusher) Run(ctx context.Context) error {
	interval := f.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// contexto novo: o do serviço já foi cancelado
			fctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := f.FlushOnce(fctx)
			cancel()
			if err != nil {
				f.Log.Error("final journal flush failed", zap.Error(err), zap.Int("pending", f.Outbox.Len()))
			}
			return ctx.Err()
		case <-f.Outbox.Notify():
		case <-ticker.C:
		}

		if err := f.FlushOnce(ctx); err != nil && ctx.Err() == nil {
			f.Log.Warn("journal flush failed, will retry", zap.Error(err), zap.Int("pending", f.Outbox.Len()))
		}
	}
}

// Start roda o flusher num contexto próprio, independente do sinal de
// shutdown. stop deve ser chamado só depois que nenhuma mutação nova puder
// chegar (http.Server.Shutdown já retornou): cancela o loop e espera o flush
// final, então tudo que foi confirmado ao cliente chega ao store.
func (f *Flusher) Start() (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = f.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// FlushOnce grava o que estiver pendente. Se o store falhar, os registros
// voltam para a frente da fila, preservando a ordem.
func (f *Flusher) FlushOnce(ctx context.Context) error {
	batch := f.Outbox.Drain()
	if len(batch) == 0 {
		return nil
	}

	if err := f.Store.Append(ctx, batch...); err != nil {
		f.Outbox.Requeue(batch)
		f.fail("store")
		return err
	}
	if f.OnFlushed != nil {
		f.OnFlushed(len(batch))
	}

	for _, s := range f.Sinks {
		if err := s.Deliver(ctx, batch); err != nil {
			f.Log.Warn("sink delivery failed",
				zap.String("sink", s.Name()),
				zap.Error(err),
				zap.Uint64("first_seq", batch[0].Seq),
				zap.Int("count", len(batch)),
			)
			f.fail("sink_" + s.Name())
		}
	}
	return nil
}

func (f *Flusher) fail(stage string) {
	if f.OnError != nil {
		f.OnError(stage)
	}
}
