package ports

import "context"

// Tx is an opaque transaction handle owned by the persistence adapter (a *gorm.DB for gormstore).
type Tx interface{}

// UnitOfWork defines a transaction boundary. Returning an error from fn rolls back,
// returning nil commits. Repositories called with the ctx passed to fn join the transaction.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) Tx {
	if ctx == nil {
		return nil
	}
	return ctx.Value(txKey{})
}

func InTx(ctx context.Context) bool {
	return TxFromContext(ctx) != nil
}
