package repositories

import "context"

// TxFn is a function executed within a transaction. The transaction is
// carried in the context; repositories pick it up via GetTx.
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside a single database transaction.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
