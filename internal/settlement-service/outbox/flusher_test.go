package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/prediction-ledger/internal/settlement/engine"
	"github.com/radieske/prediction-ledger/internal/settlement/journal"
)

type flakyStore struct {
	*journal.MemoryStore
	failures int
}

func (s *flakyStore) Append(ctx context.Context, recs ...journal.Record) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("disk full")
	}
	return s.MemoryStore.Append(ctx, recs...)
}

type recordingSink struct {
	mu   sync.Mutex
	name string
	err  error
	got  []uint64
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, recs []journal.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		s.got = append(s.got, r.Seq)
	}
	return s.err
}

func (s *recordingSink) seqs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.got...)
}

func rec(seq uint64) journal.Record {
	return journal.Record{Seq: seq, Op: journal.OpMint, At: time.Now().UTC(), Args: json.RawMessage(`{}`)}
}

func TestFlushOnceRetriesStoreInOrder(t *testing.T) {
	ctx := context.Background()
	ob := journal.NewOutbox()
	store := &flakyStore{MemoryStore: journal.NewMemoryStore(), failures: 1}
	sink := &recordingSink{name: "fake"}
	var stages []string
	f := &Flusher{
		Log: zap.NewNop(), Outbox: ob, Store: store, Sinks: []Sink{sink},
		OnError: func(stage string) { stages = append(stages, stage) },
	}

	ob.Record(rec(1))
	ob.Record(rec(2))
	require.Error(t, f.FlushOnce(ctx))
	assert.Equal(t, 2, ob.Len())
	assert.Empty(t, sink.seqs())

	ob.Record(rec(3))
	require.NoError(t, f.FlushOnce(ctx))
	assert.Zero(t, ob.Len())

	got, err := store.Records(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{1, 2, 3}, sink.seqs())
	assert.Equal(t, []string{"store"}, stages)
}

func TestSinkFailureDoesNotBlockOthers(t *testing.T) {
	ob := journal.NewOutbox()
	bad := &recordingSink{name: "bad", err: errors.New("broker down")}
	good := &recordingSink{name: "good"}
	var stages []string
	f := &Flusher{
		Log: zap.NewNop(), Outbox: ob, Store: journal.NewMemoryStore(), Sinks: []Sink{bad, good},
		OnError: func(stage string) { stages = append(stages, stage) },
	}

	ob.Record(rec(1))
	require.NoError(t, f.FlushOnce(context.Background()))
	assert.Equal(t, []uint64{1}, good.seqs())
	assert.Equal(t, []string{"sink_bad"}, stages)
	assert.Zero(t, ob.Len())
}

func TestRunPersistsEngineCommands(t *testing.T) {
	ob := journal.NewOutbox()
	store := journal.NewMemoryStore()
	f := &Flusher{Log: zap.NewNop(), Outbox: ob, Store: store, Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	e := engine.New(engine.WithRecorder(ob))
	_, err := e.Register("a", "")
	require.NoError(t, err)
	_, err = e.Mint("a", 5)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		last, _ := store.LastSeq(context.Background())
		return last == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	restored, err := engine.Restore(context.Background(), store)
	require.NoError(t, err)
	bal, err := restored.Balance("a")
	require.NoError(t, err)
	assert.Equal(t, 5.0, bal)
}

func TestStopFlushesMutationsAcknowledgedDuringDrain(t *testing.T) {
	ob := journal.NewOutbox()
	store := journal.NewMemoryStore()
	f := &Flusher{Log: zap.NewNop(), Outbox: ob, Store: store, Interval: time.Hour}

	e := engine.New(engine.WithRecorder(ob))
	stop := f.Start()

	_, err := e.Register("a", "")
	require.NoError(t, err)

	// shutdown recebido: handlers em andamento ainda confirmam mutações
	serviceCtx, cancelService := context.WithCancel(context.Background())
	cancelService()
	<-serviceCtx.Done()
	_, err = e.Mint("a", 10)
	require.NoError(t, err)

	stop()

	seq, err := e.Seq()
	require.NoError(t, err)
	last, err := store.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seq, last)
	assert.Zero(t, ob.Len())

	restored, err := engine.Restore(context.Background(), store)
	require.NoError(t, err)
	bal, err := restored.Balance("a")
	require.NoError(t, err)
	assert.Equal(t, 10.0, bal)
}
