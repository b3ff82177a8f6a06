// Package party resolves taxable party numbers to mailing addresses.
package party

import (
	"context"
	"strings"

	"fjacquet/payout-report/internal/models"
)

// Resolver returns the addresses of a party. An unknown party yields an empty
// list and a nil error.
type Resolver interface {
	Resolve(ctx context.Context, partyNumber string) ([]models.Address, error)
}

// StaticResolver serves addresses from a fixed map keyed by party number.
type StaticResolver map[string][]models.Address

// Resolve implements Resolver.
func (s StaticResolver) Resolve(_ context.Context, partyNumber string) ([]models.Address, error) {
	addresses, ok := s[strings.TrimSpace(partyNumber)]
	if !ok {
		return []models.Address{}, nil
	}
	out := make([]models.Address, len(addresses))
	copy(out, addresses)
	return out, nil
}
