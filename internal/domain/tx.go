package domain

import "context"

// Transactor runs fn inside one storage transaction. Repository calls made
// with the context passed to fn join it. The transaction commits only when
// fn returns nil.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
