package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	domainRepos "re-view.backend/internal/domain/repositories"
	"re-view.backend/pkg/logger"
)

type txKeyType struct{}

var txKey txKeyType

const (
	maxTxAttempts = 3
	txRetryDelay  = 20 * time.Millisecond
)

var commitTx = func(tx *gorm.DB) error { return tx.Commit().Error }

// UnitOfWorkImpl is the gorm UnitOfWork. Top-level transactions that fail
// with a serialization or deadlock error are retried from scratch.
type UnitOfWorkImpl struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) domainRepos.UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = u.once(ctx, fn)
		if err == nil || !retryable(err) || attempt == maxTxAttempts {
			break
		}
		logger.Warn(ctx, "Retrying transaction", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * txRetryDelay):
		}
	}
	return err
}

func (u *UnitOfWorkImpl) once(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}
	if err := commitTx(tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// retryable matches postgres serialization_failure and deadlock_detected,
// and sqlite's busy lock
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return strings.Contains(err.Error(), "database is locked")
}

// GetDB returns the transaction bound to ctx, or fallback outside one
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
