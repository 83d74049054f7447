package wallet

import (
	"context"
	"fmt"
	"time"
)

// Service exposes wallet operations over the account store.
type Service struct {
	store Store
}

// NewService builds a wallet service instance.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Balance returns the current point balance for the user.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	amount, err := s.store.Balance(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{UserID: userID, Amount: amount, AsOf: time.Now().UTC()}, nil
}

// Grant creates the account if needed and credits it. Used for the signup
// bonus and for staff top-ups; it is the only way points enter the system.
func (s *Service) Grant(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("amount must not be negative")
	}
	if err := s.store.EnsureAccount(ctx, userID); err != nil {
		return 0, err
	}
	if amount == 0 {
		return s.store.Balance(ctx, userID)
	}
	return s.store.Credit(ctx, userID, amount)
}
