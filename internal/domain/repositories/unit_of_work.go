package repositories

import (
	"context"
)

// UnitOfWork runs fn in one transaction carried by the ctx it passes down.
// fn may be invoked again after a serialization conflict, so it must only
// touch the store through that ctx. A Do inside another Do joins the outer one.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
