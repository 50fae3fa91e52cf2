package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/bascanada/domain-mcp/pkg/domain/adapter/httpadapter"
	"github.com/bascanada/domain-mcp/pkg/domain/breaker"
	"github.com/bascanada/domain-mcp/pkg/domain/model"
)

// gatherPartial runs one operation per key in ops concurrently, collecting
// every success and failure rather than aborting on the first error. It
// raises only if the resulting success rate falls below minSuccessRate.
func gatherPartial[T any](ctx context.Context, ops map[string]func(context.Context) (T, error), operationType string, minSuccessRate float64) (model.PartialResult[T], error) {
	if len(ops) == 0 {
		return model.PartialResult[T]{}, errors.New("operations map cannot be empty")
	}

	type outcome struct {
		id    string
		value T
		err   error
	}

	results := make(chan outcome, len(ops))
	var wg sync.WaitGroup
	for id, op := range ops {
		wg.Add(1)
		go func(id string, op func(context.Context) (T, error)) {
			defer wg.Done()
			v, err := op(ctx)
			results <- outcome{id: id, value: v, err: err}
		}(id, op)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var out model.PartialResult[T]
	for r := range results {
		if r.err != nil {
			kind := classifyError(r.err)
			out.Failures = append(out.Failures, model.FailureInfo{ID: r.id, Kind: kind, Error: r.err.Error()})
			continue
		}
		out.Successes = append(out.Successes, r.value)
	}

	if out.SuccessRate() < minSuccessRate {
		return out, fmt.Errorf("%w: success rate %.1f%% below minimum %.1f%% for %s (%d successes, %d failures)",
			ErrLowSuccessRate, out.SuccessRate()*100, minSuccessRate*100, operationType, len(out.Successes), len(out.Failures))
	}
	return out, nil
}

// classifyError maps an adapter-layer error into the closed FailureKind
// set, mirroring the HTTP status / transport-error classification the
// httpadapter already performs.
func classifyError(err error) model.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FailureTimeout
	}
	if errors.Is(err, httpadapter.ErrFatalClientError) {
		return model.FailureHTTPError
	}
	if errors.Is(err, breaker.ErrOpen) {
		return model.FailureServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return model.FailureTimeout
		}
		return model.FailureConnectionError
	}
	return model.FailureUnknownError
}
