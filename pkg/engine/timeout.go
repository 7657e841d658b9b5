package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/formcutter/pkg/graph"
)

// DefaultTimeout bounds an evaluation when Engine.Timeout is unset.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type outcome struct {
	graph  *graph.Graph
	errors []EvalError
	err    error
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return DefaultTimeout
}

func (e *Engine) current() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// await waits for the run started as generation gen. The interpreter cannot
// be interrupted, so on timeout or cancellation its goroutine keeps going
// and its late outcome is dropped into the buffered channel unread.
func (e *Engine) await(ctx context.Context, ch <-chan outcome, gen uint64) (*graph.Graph, []EvalError, error) {
	limit := e.timeout()
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		if e.current() != gen {
			return nil, nil, ErrSuperseded
		}
		return res.graph, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", ctx.Err())
	}
}
