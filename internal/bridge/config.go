package bridge

import "time"

// Config holds the retry policy.
type Config struct {
	// MaxAttempts bounds the number of attempts, the first one included.
	MaxAttempts int `validate:"min=1"`
	// Backoff is the fixed wait between attempts.
	Backoff time.Duration `validate:"min=0"`
	// Breaker enables a circuit breaker around attempts when non-nil.
	Breaker *BreakerConfig
}

// DefaultConfig returns three attempts with a 100ms backoff and no breaker.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Backoff:     100 * time.Millisecond,
	}
}

// BreakerConfig configures the circuit breaker. Only connectivity failures
// count against it.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio at which the breaker opens.
	FailureThreshold float64 `validate:"gt=0,lte=1"`
	// MinRequests is the sample size required before the ratio is checked.
	MinRequests uint32
}

// DefaultBreakerConfig returns the defaults used when a breaker is enabled
// without further settings.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}
}
