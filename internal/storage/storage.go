// Package storage provides the unit-of-work abstraction shared by the wallet
// and enrollment stores. A purchase debits an account and records an
// enrollment inside one unit of work: both writes commit together or neither
// takes effect, and no reader observes the intermediate state.
package storage

import "context"

// Tx is the handle for one atomic unit of work. Stores assert the concrete
// type produced by the runner that opened it.
type Tx any

// TxRunner opens a unit of work, invokes fn with its transaction handle,
// commits when fn returns nil and rolls back otherwise.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
