package circuitbreaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State represents the state of a circuit breaker
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

const defaultHalfOpenCalls = 1

// Breaker stops calling a dependency after maxFailures consecutive failures.
// Once the cooldown has passed it lets probe calls through; a successful probe
// closes it again and a failed one reopens it.
type Breaker struct {
	name          string
	maxFailures   uint32
	cooldown      time.Duration
	halfOpenCalls uint32
	now           func() time.Time
	logger        *logrus.Logger

	mu          sync.Mutex
	state       State
	failures    uint32
	lastFailure time.Time
	probes      uint32
	successes   uint32
	requests    uint64
	rejected    uint64
	onChange    func(State)
}

// New creates a closed breaker
func New(name string, maxFailures uint32, cooldown time.Duration, logger *logrus.Logger) *Breaker {
	if maxFailures == 0 {
		maxFailures = 1
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Breaker{
		name:          name,
		maxFailures:   maxFailures,
		cooldown:      cooldown,
		halfOpenCalls: defaultHalfOpenCalls,
		now:           time.Now,
		logger:        logger,
		state:         StateClosed,
	}
}

// OnStateChange registers fn to run, under the breaker lock, on every transition
func (b *Breaker) OnStateChange(fn func(State)) *Breaker {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
	return b
}

// Execute runs fn unless the breaker is open. Only errors for which counts
// returns true are failures; any other result means the dependency answered.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error, counts func(error) bool) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && (counts == nil || counts(err)) {
		b.onFailure()
		return err
	}
	b.onSuccess()
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.lastFailure) >= b.cooldown {
		b.setState(StateHalfOpen)
		b.probes = 0
		b.successes = 0
	}

	switch b.state {
	case StateClosed:
		b.requests++
		return nil
	case StateHalfOpen:
		if b.probes < b.halfOpenCalls {
			b.probes++
			b.requests++
			return nil
		}
	}

	b.rejected++
	return &OpenError{Name: b.name, State: b.state}
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.halfOpenCalls {
			b.failures = 0
			b.setState(StateClosed)
			b.logger.WithField("circuit_breaker", b.name).Info("Circuit breaker closed after successful probe")
		}
	case StateClosed:
		b.failures = 0
	}
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()

	if b.state == StateHalfOpen || (b.state == StateClosed && b.failures >= b.maxFailures) {
		b.setState(StateOpen)
		b.logger.WithFields(logrus.Fields{
			"circuit_breaker": b.name,
			"failures":        b.failures,
			"cooldown_ms":     b.cooldown.Milliseconds(),
		}).Warn("Circuit breaker opened")
	}
}

// setState must be called with mu held
func (b *Breaker) setState(s State) {
	if b.state == s {
		return
	}
	b.state = s
	if b.onChange != nil {
		b.onChange(s)
	}
}

// State returns the current state without advancing an expired cooldown
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats is a point-in-time view of a breaker
type Stats struct {
	Name        string    `json:"name"`
	State       string    `json:"state"`
	Failures    uint32    `json:"consecutive_failures"`
	Requests    uint64    `json:"requests"`
	Rejected    uint64    `json:"rejected"`
	LastFailure time.Time `json:"last_failure,omitempty"`
}

// Stats returns counters for the breaker
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Name:        b.name,
		State:       b.state.String(),
		Failures:    b.failures,
		Requests:    b.requests,
		Rejected:    b.rejected,
		LastFailure: b.lastFailure,
	}
}

// OpenError is returned when a call is rejected without being attempted
type OpenError struct {
	Name  string
	State State
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker '%s' is %s", e.Name, e.State)
}

// IsOpenError reports whether err is a rejected call
func IsOpenError(err error) bool {
	_, ok := err.(*OpenError)
	return ok
}
