package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/resilience"
)

// Resilient wraps a Generator with retries and a circuit breaker. It is
// safe for concurrent use.
type Resilient struct {
	next    Generator
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewResilient wraps next. Only retryable errors count toward the breaker.
func NewResilient(next Generator, retry resilience.RetryConfig, breaker resilience.CircuitBreakerConfig) *Resilient {
	retry.ShouldRetry = IsRetryable
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger(next.Provider(), "generate")
	}
	breaker.ShouldTrip = IsRetryable
	if breaker.OnStateChange == nil {
		provider := next.Provider()
		breaker.OnStateChange = func(from, to resilience.CircuitState) {
			zap.L().Warn("llm: circuit state change",
				zap.String("provider", provider),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		}
	}
	return &Resilient{
		next:    next,
		retry:   retry,
		breaker: resilience.NewCircuitBreaker(breaker),
	}
}

func (r *Resilient) Provider() string { return r.next.Provider() }
func (r *Resilient) Model() string    { return r.next.Model() }

// Generate calls the wrapped Generator through the breaker, retrying
// transient failures.
func (r *Resilient) Generate(ctx context.Context, req Request) (*Response, error) {
	return resilience.DoVal(ctx, r.retry, func(ctx context.Context) (*Response, error) {
		return resilience.ExecuteVal(ctx, r.breaker, func(ctx context.Context) (*Response, error) {
			return r.next.Generate(ctx, req)
		})
	})
}

// BreakerState reports the circuit state, for health checks.
func (r *Resilient) BreakerState() resilience.CircuitState {
	return r.breaker.State()
}
