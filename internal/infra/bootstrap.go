package infra

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"

	"crypto-audit-service/internal/domain"
)

// Opener はDSNからDB接続を開く関数。
type Opener func(dsn string) (*gorm.DB, error)

type bootstrapOptions struct {
	open   Opener
	models []interface{}
}

// BootstrapOption はAcquireの動作を変更する。
type BootstrapOption func(*bootstrapOptions)

// WithOpener は接続に使う関数を差し替える。
func WithOpener(open Opener) BootstrapOption {
	return func(o *bootstrapOptions) {
		o.open = open
	}
}

// WithModels は接続後に存在を保証するテーブルのモデルを指定する。
func WithModels(models ...interface{}) BootstrapOption {
	return func(o *bootstrapOptions) {
		o.models = append(o.models, models...)
	}
}

// Acquire はDBが起動するまでpollInterval間隔で接続を試み、timeout経過で諦める。
// 接続後はWithModelsで指定したテーブルを作成する（既に存在する場合は何もしない）。
// プロセス起動時に一度だけ呼び出すことを想定している。
func Acquire(ctx context.Context, dsn string, timeout, pollInterval time.Duration, opts ...BootstrapOption) (*gorm.DB, error) {
	o := &bootstrapOptions{
		open: func(dsn string) (*gorm.DB, error) {
			return NewDB(dsn, false)
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	// timeoutは試行回数ではなく経過時間で数える
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var db *gorm.DB
	var lastErr error
	err := backoff.RetryNotify(
		func() error {
			conn, err := connect(waitCtx, o.open, dsn)
			if err != nil {
				if waitCtx.Err() == nil {
					lastErr = err
				}
				return err
			}
			db = conn
			return nil
		},
		backoff.WithContext(backoff.NewConstantBackOff(pollInterval), waitCtx),
		func(retryErr error, wait time.Duration) {
			slog.WarnContext(ctx, "failed to connect to database, will retry",
				"operation", "acquire",
				"wait", wait.String(),
				"error", retryErr,
			)
		},
	)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("%w: database did not become available within %s: %v", domain.ErrStoreUnavailable, timeout, lastErr)
	}

	if err := EnsureSchema(ctx, db, o.models...); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return db, nil
}

// EnsureSchema はモデルに対応するテーブルが無ければ作成する。
func EnsureSchema(ctx context.Context, db *gorm.DB, models ...interface{}) error {
	migrator := db.WithContext(ctx).Migrator()
	for _, model := range models {
		if migrator.HasTable(model) {
			continue
		}
		if err := migrator.CreateTable(model); err != nil {
			// 別プロセスが同時に作成した場合は成功とみなす
			if migrator.HasTable(model) {
				continue
			}
			slog.ErrorContext(ctx, "failed to create table",
				"operation", "ensure_schema",
				"model", fmt.Sprintf("%T", model),
				"error", err,
			)
			return err
		}
	}
	return nil
}

// connect は1回分の接続とpingを行う。ctxが先に終了した場合は試行の完了を待たずに戻り、
// 遅れて開いた接続は閉じる。
func connect(ctx context.Context, open Opener, dsn string) (*gorm.DB, error) {
	type result struct {
		db  *gorm.DB
		err error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := open(dsn)
		if err == nil {
			if err = ping(ctx, conn); err != nil {
				closeDB(conn)
				conn = nil
			}
		}
		done <- result{db: conn, err: err}
	}()

	select {
	case r := <-done:
		return r.db, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.db != nil {
				closeDB(r.db)
			}
		}()
		return nil, backoff.Permanent(ctx.Err())
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
