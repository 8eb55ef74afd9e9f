package delivery

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

type defaultCodeFactory struct {
	ttl time.Duration
}

// NewCodeFactory - creates a CodeFactory issuing 6-digit numeric codes
// valid for ttl.
func NewCodeFactory(ttl time.Duration) CodeFactory {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return defaultCodeFactory{ttl: ttl}
}

// Generate returns a random 6-digit code and its expiry.
func (f defaultCodeFactory) Generate(now time.Time) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate delivery code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), now.Add(f.ttl), nil
}
