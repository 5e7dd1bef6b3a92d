package journal

import "sync"

// Outbox é a fila em memória onde o engine registra comandos enquanto
// segura o lock. A persistência acontece fora do lock, por quem drena a fila.
type Outbox struct {
	mu      sync.Mutex
	pending []Record
	notify  chan struct{}
}

// NewOutbox cria uma fila vazia.
func NewOutbox() *Outbox {
	return &Outbox{notify: make(chan struct{}, 1)}
}

// Record enfileira um registro. Nunca bloqueia.
func (o *Outbox) Record(r Record) {
	o.mu.Lock()
	o.pending = append(o.pending, r)
	o.mu.Unlock()

	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// Drain retira todos os registros pendentes, em ordem.
func (o *Outbox) Drain() []Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.pending
	o.pending = nil
	return out
}

// Requeue devolve registros não gravados para a frente da fila.
func (o *Outbox) Requeue(recs []Record) {
	if len(recs) == 0 {
		return
	}
	o.mu.Lock()
	o.pending = append(append([]Record(nil), recs...), o.pending...)
	o.mu.Unlock()
}

// Len retorna o tamanho da fila.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Notify sinaliza quando há registros novos.
func (o *Outbox) Notify() <-chan struct{} { return o.notify }
