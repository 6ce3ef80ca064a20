package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/iota-uz/orgstruct/modules/org/domain/changerequest"
)

// maxNumberAttempts bounds the collision pre-check; the store's unique
// constraint on request_number remains the authoritative guard.
const maxNumberAttempts = 10

// RequestNumberGenerator produces candidates of the form
// <prefix>-<epoch-millis>-<3-digit-random>.
type RequestNumberGenerator struct {
	prefix     string
	now        func() time.Time
	randDigits func() int
}

func NewRequestNumberGenerator(prefix string) *RequestNumberGenerator {
	return &RequestNumberGenerator{
		prefix:     prefix,
		now:        time.Now,
		randDigits: func() int { return rand.IntN(1000) },
	}
}

func (g *RequestNumberGenerator) candidate() string {
	return fmt.Sprintf("%s-%d-%03d", g.prefix, g.now().UnixMilli(), g.randDigits())
}

// Next returns a candidate that did not exist at probe time, retrying up to
// maxNumberAttempts on collision. Exhaustion is the one retryable failure in
// this core.
func (g *RequestNumberGenerator) Next(ctx context.Context, requests changerequest.Repository) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		candidate := g.candidate()
		exists, err := requests.ExistsByRequestNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		recordNumberCollision()
	}
	return "", newServiceError(
		http.StatusServiceUnavailable,
		"ORG_REQUEST_NUMBER_EXHAUSTED",
		"failed to generate unique request number",
		nil,
	)
}
