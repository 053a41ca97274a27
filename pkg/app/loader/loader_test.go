package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed[T any](v T, err error) Fetch[T] {
	return func(ctx context.Context) (T, error) { return v, err }
}

func run[T any](t *testing.T, l *Loader[T], fetch Fetch[T]) Result[T] {
	t.Helper()
	cmd := l.Load(context.Background(), fetch)
	require.NotNil(t, cmd)
	msg := cmd()
	r, ok := msg.(Result[T])
	require.True(t, ok, "unexpected message %T", msg)
	return r
}

func TestLoaderPhases(t *testing.T) {
	tests := []struct {
		name  string
		value []string
		err   error
		phase Phase
	}{
		{name: "populated", value: []string{"Foo"}, phase: Populated},
		{name: "empty", value: []string{}, phase: Empty},
		{name: "failed", err: errors.New("boom"), phase: Failed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(Slice[string])
			assert.Equal(t, Idle, l.Phase())

			r := run(t, l, fixed(tt.value, tt.err))
			assert.True(t, l.Apply(r))
			assert.Equal(t, tt.phase, l.Phase())
			assert.Equal(t, tt.err, l.Err())
		})
	}
}

func TestLoaderFailedIsNotEmpty(t *testing.T) {
	l := New(Slice[string])
	l.Apply(run(t, l, fixed([]string(nil), errors.New("down"))))
	assert.Equal(t, Failed, l.Phase())
	assert.NotEqual(t, Empty, l.Phase())
}

func TestLoaderPointerEmptiness(t *testing.T) {
	l := New(Pointer[int])
	l.Apply(run(t, l, fixed[*int](nil, nil)))
	assert.Equal(t, Empty, l.Phase())

	n := 42
	l.Apply(run(t, l, fixed(&n, nil)))
	assert.Equal(t, Populated, l.Phase())
	assert.Equal(t, 42, *l.Value())
}

func TestLoaderDiscardsStaleGeneration(t *testing.T) {
	l := New[string](nil)

	first := l.Load(context.Background(), fixed("comic 42", nil))
	second := l.Load(context.Background(), fixed("comic 43", nil))
	assert.Equal(t, Loading, l.Phase())

	// Results arrive out of order
	assert.True(t, l.Apply(second().(Result[string])))
	assert.False(t, l.Apply(first().(Result[string])))
	assert.Equal(t, "comic 43", l.Value())
}

func TestLoaderLoadCancelsPrevious(t *testing.T) {
	l := New[string](nil)
	started := make(chan context.Context, 1)

	first := l.Load(context.Background(), func(ctx context.Context) (string, error) {
		started <- ctx
		<-ctx.Done()
		return "", ctx.Err()
	})
	done := make(chan Result[string], 1)
	go func() { done <- first().(Result[string]) }()
	<-started

	l.Load(context.Background(), fixed("next", nil))

	r := <-done
	assert.ErrorIs(t, r.Err, context.Canceled)
	assert.False(t, l.Apply(r))
	assert.Equal(t, Loading, l.Phase())
}

func TestLoaderStopIgnoresLateResults(t *testing.T) {
	l := New[string](nil)
	cmd := l.Load(context.Background(), fixed("late", nil))
	l.Stop()

	assert.False(t, l.Apply(cmd().(Result[string])))
	assert.Equal(t, Idle, l.Phase())
	assert.Empty(t, l.Value())
}

func TestLoaderIgnoresOtherLoaders(t *testing.T) {
	a := New[string](nil)
	b := New[string](nil)
	ra := run(t, a, fixed("a", nil))
	b.Load(context.Background(), fixed("b", nil))

	assert.False(t, b.Apply(ra))
	assert.Equal(t, Loading, b.Phase())
}

func TestLoaderReloadClearsPreviousValue(t *testing.T) {
	l := New[string](nil)
	l.Apply(run(t, l, fixed("old", nil)))
	require.Equal(t, "old", l.Value())

	l.Load(context.Background(), fixed("new", nil))
	assert.Equal(t, Loading, l.Phase())
	assert.Empty(t, l.Value())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "populated", Populated.String())
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "failed", Failed.String())
}
