// Package engine é o handle explícito sobre Ledger, Escrow e MarketManager.
// Toda operação pública passa por um único RWMutex: mutações são exclusivas
// e leituras compartilhadas. Um panic dentro da seção crítica envenena o
// engine e todas as chamadas seguintes falham com ErrLedgerUnavailable.
package engine

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
	"github.com/radieske/prediction-ledger/internal/settlement/journal"
)

// Recorder recebe cada comando bem-sucedido enquanto o lock está seguro.
// Implementações não podem bloquear nem fazer I/O (ver journal.Outbox).
type Recorder interface {
	Record(journal.Record)
}

// Observer é chamado ao fim de cada mutação, fora do lock.
type Observer func(op string, err error, d time.Duration)

// Migration é um passo versionado de upgrade do estado.
type Migration struct {
	Version int
	Name    string
	Apply   func(*State) error
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithIDGenerator(gen func() string) Option { return func(e *Engine) { e.newID = gen } }

func WithRecorder(r Recorder) Option { return func(e *Engine) { e.recorder = r } }

func WithObserver(o Observer) Option { return func(e *Engine) { e.observer = o } }

// WithMigrations registra migrações disponíveis para Upgrade e para o
// replay de registros de upgrade.
func WithMigrations(ms ...Migration) Option {
	return func(e *Engine) {
		for _, m := range ms {
			e.migrations[m.Version] = m
		}
	}
}

type Engine struct {
	mu       sync.RWMutex
	state    *State
	seq      uint64
	poisoned atomic.Bool

	now        func() time.Time
	newID      func() string
	recorder   Recorder
	observer   Observer
	migrations map[int]Migration
}

// New cria um engine vazio e isolado.
func New(opts ...Option) *Engine {
	e := &Engine{
		state:      newState(),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
		migrations: make(map[int]Migration),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Poisoned indica se um panic anterior invalidou o estado.
func (e *Engine) Poisoned() bool { return e.poisoned.Load() }

// Seq retorna o seq do último comando aplicado.
func (e *Engine) Seq() (uint64, error) {
	return read(e, func(*State) uint64 { return e.seq })
}

func (e *Engine) exec(c command) (res any, err error) {
	start := time.Now()
	defer func() {
		if e.observer != nil {
			e.observer(c.op(), err, time.Since(start))
		}
	}()
	return e.apply(c, time.Time{}, true)
}

// apply executa o comando sob o lock exclusivo. at zero usa o relógio do
// engine; record=false é usado no replay.
func (e *Engine) apply(c command, at time.Time, record bool) (res any, err error) {
	if e.poisoned.Load() {
		return nil, domain.ErrLedgerUnavailable
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.poisoned.Load() {
		return nil, domain.ErrLedgerUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			e.poisoned.Store(true)
			res, err = nil, fmt.Errorf("%w: %s panicked: %v", domain.ErrLedgerUnavailable, c.op(), r)
		}
	}()

	if at.IsZero() {
		at = e.now()
	}
	res, err = c.apply(e.state, at)
	if err != nil {
		return nil, err
	}
	e.seq++
	if record && e.recorder != nil {
		e.recorder.Record(e.record(c, at, res))
	}
	return res, nil
}

func (e *Engine) record(c command, at time.Time, res any) journal.Record {
	args, err := json.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("encode %s args: %v", c.op(), err))
	}
	result, err := json.Marshal(res)
	if err != nil {
		panic(fmt.Sprintf("encode %s result: %v", c.op(), err))
	}
	return journal.Record{Seq: e.seq, Op: c.op(), At: at, Args: args, Result: result}
}

// read executa fn sob o lock compartilhado.
func read[T any](e *Engine, fn func(*State) T) (out T, err error) {
	if e.poisoned.Load() {
		return out, domain.ErrLedgerUnavailable
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.poisoned.Load() {
		return out, domain.ErrLedgerUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out, err = zero, fmt.Errorf("%w: read panicked: %v", domain.ErrLedgerUnavailable, r)
		}
	}()
	return fn(e.state), nil
}

func cast[T any](res any, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
