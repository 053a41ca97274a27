// Package loader tracks the lifecycle of a screen's remote data.
//
// A Loader moves idle -> loading -> populated | empty | failed. Every Load
// starts a new generation; results from older generations, or from a loader
// that has been stopped, are discarded when they arrive.
package loader

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Populated
	Empty
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Fetch performs the remote call for one generation.
type Fetch[T any] func(ctx context.Context) (T, error)

// Result is the message a Load command produces.
type Result[T any] struct {
	owner *Loader[T]
	gen   uint64

	Value T
	Err   error
}

// Loader is owned by a single screen and is only touched from the bubbletea
// update loop, so it needs no locking. The fetch itself runs in a command.
type Loader[T any] struct {
	isEmpty func(T) bool

	phase  Phase
	value  T
	err    error
	gen    uint64
	cancel context.CancelFunc
}

// New returns an idle loader. isEmpty decides whether a successful value is
// rendered as empty; nil means never empty.
func New[T any](isEmpty func(T) bool) *Loader[T] {
	return &Loader[T]{isEmpty: isEmpty}
}

// Slice is the usual emptiness check for list results.
func Slice[E any](v []E) bool {
	return len(v) == 0
}

// Pointer treats a nil pointer as empty, for lookups that may find nothing.
func Pointer[E any](v *E) bool {
	return v == nil
}

// Load cancels any fetch in flight, enters the loading phase and returns the
// command that runs fetch.
func (l *Loader[T]) Load(ctx context.Context, fetch Fetch[T]) tea.Cmd {
	l.invalidate()

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.phase = Loading
	gen := l.gen

	var zero T
	l.value = zero
	l.err = nil

	return func() tea.Msg {
		defer cancel()
		v, err := fetch(ctx)
		return Result[T]{owner: l, gen: gen, Value: v, Err: err}
	}
}

// Apply stores r if it belongs to this loader's current generation and
// reports whether it did.
func (l *Loader[T]) Apply(r Result[T]) bool {
	if r.owner != l || r.gen != l.gen || l.phase != Loading {
		return false
	}
	l.cancel = nil

	switch {
	case r.Err != nil:
		l.phase = Failed
		l.err = r.Err
	case l.isEmpty != nil && l.isEmpty(r.Value):
		l.phase = Empty
		l.value = r.Value
	default:
		l.phase = Populated
		l.value = r.Value
	}
	return true
}

// Stop cancels outstanding work and returns the loader to idle. Results that
// arrive afterwards are ignored.
func (l *Loader[T]) Stop() {
	l.invalidate()
	l.phase = Idle
}

func (l *Loader[T]) invalidate() {
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loader[T]) Phase() Phase { return l.phase }

func (l *Loader[T]) Value() T { return l.value }

func (l *Loader[T]) Err() error { return l.err }
