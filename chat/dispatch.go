package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/varun-cu-unv/MedAssist/log"
)

var (
	// ErrBusy means a query is already in flight.
	ErrBusy = errors.New("query already in flight")
	// ErrEmptyQuery means the term was blank after trimming.
	ErrEmptyQuery = errors.New("empty query")
)

// Phase of a dispatched query.
type Phase int

const (
	// PhasePending: the query went out, input should be disabled.
	PhasePending Phase = iota
	// PhaseAnswered: a structured record came back.
	PhaseAnswered
	// PhaseFailed: a plain message or a transport error came back.
	PhaseFailed
)

// Update is one lifecycle step of a dispatched query.
type Update struct {
	Query   string
	Phase   Phase
	Info    *DrugInfo
	Source  string
	Message string
	Err     error
}

// Querier issues one drug-information query.
type Querier interface {
	Query(ctx context.Context, drug, lang string) (*Response, error)
}

// Dispatcher serializes queries: at most one in flight, publishing Pending
// and settle updates in order. Whatever the outcome, the busy flag clears
// when the query settles, so input is never locked up by a failure.
type Dispatcher struct {
	q       Querier
	updates chan Update

	mu   sync.Mutex
	busy bool
}

func NewDispatcher(q Querier) *Dispatcher {
	return &Dispatcher{q: q, updates: make(chan Update, 8)}
}

func (d *Dispatcher) Updates() <-chan Update { return d.updates }

func (d *Dispatcher) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// Send issues one query. A call while another is pending returns ErrBusy;
// the pending query is unaffected.
func (d *Dispatcher) Send(ctx context.Context, term, lang string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return ErrEmptyQuery
	}

	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return ErrBusy
	}
	d.busy = true
	d.updates <- Update{Query: term, Phase: PhasePending}
	d.mu.Unlock()

	go d.run(ctx, term, lang)
	return nil
}

func (d *Dispatcher) run(ctx context.Context, term, lang string) {
	start := time.Now()
	resp, err := d.q.Query(ctx, term, lang)

	up := Update{Query: term}
	switch {
	case err != nil:
		up.Phase = PhaseFailed
		up.Err = err
		log.Errorf("drug query %q failed: %v", term, err)
	case resp.Success && resp.DrugInfo != nil:
		up.Phase = PhaseAnswered
		up.Info = resp.DrugInfo
		up.Source = resp.Source
		up.Message = resp.Message
		log.Query(term, resp.Source, float64(time.Since(start).Milliseconds()))
	default:
		up.Phase = PhaseFailed
		up.Message = resp.Message
	}

	d.mu.Lock()
	d.busy = false
	d.updates <- up
	d.mu.Unlock()
}
