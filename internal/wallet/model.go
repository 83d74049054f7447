package wallet

import "time"

// Account holds the point balance for one student. Points are an internal
// currency; there are no fractional units.
type Account struct {
	UserID    string
	Balance   int64
	CreatedAt time.Time
}

// Balance is a point-in-time view of an account's available points.
type Balance struct {
	UserID string
	Amount int64
	AsOf   time.Time
}
