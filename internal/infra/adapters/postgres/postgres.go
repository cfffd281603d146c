package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"

	"github.com/qrave1/LetzTalk/internal/application/constant"
)

// NewPostgres подключается к postgres, повторяя попытки с экспоненциальной задержкой.
func NewPostgres(ctx context.Context, url string, attempts uint64) (*sqlx.DB, error) {
	var db *sqlx.DB

	backoff := retry.WithMaxRetries(attempts, retry.NewExponential(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		conn, err := sqlx.ConnectContext(dbCtx, "pgx", url)
		if err != nil {
			slog.Warn("connect to postgres, retrying", slog.Any(constant.Error, err))
			return retry.RetryableError(err)
		}

		if err = conn.PingContext(dbCtx); err != nil {
			_ = conn.Close()
			return retry.RetryableError(err)
		}

		db = conn

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	slog.Info("connected to postgres")

	return db, nil
}
