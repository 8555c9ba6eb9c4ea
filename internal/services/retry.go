package services

import "time"

// RetryPolicy bounds a fixed-delay polling loop. Tests inject a
// zero-backoff policy to keep polling deterministic and fast.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// ProvisionPolicy configures family provisioning behavior.
type ProvisionPolicy struct {
	// ReadBack governs the membership read-after-write poll.
	ReadBack RetryPolicy
	// TrustWriteOnStaleRead makes provisioning succeed with the
	// creation-step family ID even when the read-back poll never
	// observes it. Disable for stores with strict read consistency
	// where a stale read indicates a real failure.
	TrustWriteOnStaleRead bool
}

// DefaultProvisionPolicy returns the production policy: three poll
// attempts, one second apart, trusting the write when the poll stays stale.
func DefaultProvisionPolicy() ProvisionPolicy {
	return ProvisionPolicy{
		ReadBack:              RetryPolicy{MaxAttempts: 3, Backoff: time.Second},
		TrustWriteOnStaleRead: true,
	}
}
