// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/storage"
	"github.com/rovshanmuradov/birthpad/internal/storage/models"
)

const pgErrUniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS launchpad_transactions (
	id             BIGSERIAL PRIMARY KEY,
	signature      VARCHAR(88) NOT NULL UNIQUE,
	wallet_address VARCHAR(44) NOT NULL,
	action         VARCHAR(16) NOT NULL,
	mint           VARCHAR(44) NOT NULL DEFAULT '',
	platform_id    VARCHAR(44) NOT NULL DEFAULT '',
	amount_a       NUMERIC(40,18) NOT NULL DEFAULT 0,
	symbol_a       VARCHAR(32) NOT NULL DEFAULT '',
	amount_b       NUMERIC(40,18) NOT NULL DEFAULT 0,
	symbol_b       VARCHAR(32) NOT NULL DEFAULT '',
	status         VARCHAR(20) NOT NULL,
	error_message  TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_launchpad_transactions_wallet
	ON launchpad_transactions (wallet_address, created_at DESC);
`

const selectColumns = `id, signature, wallet_address, action, mint, platform_id,
	amount_a::text, symbol_a, amount_b::text, symbol_b, status, error_message, created_at, updated_at`

// zapTracer пишет SQL-трассировку pgx в zap
func zapTracer(logger *zap.Logger) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger: tracelog.LoggerFunc(func(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
			fields := make([]zap.Field, 0, len(data))
			for k, v := range data {
				fields = append(fields, zap.Any(k, v))
			}
			switch level {
			case tracelog.LogLevelError:
				logger.Error(msg, fields...)
			case tracelog.LogLevelWarn:
				logger.Warn(msg, fields...)
			default:
				logger.Debug(msg, fields...)
			}
		}),
		LogLevel: tracelog.LogLevelInfo,
	}
}

// postgresStorage реализует интерфейс Storage
type postgresStorage struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStorage connects, verifies the connection and applies the schema.
func NewStorage(ctx context.Context, dsn string, zapLogger *zap.Logger) (storage.Storage, error) {
	logger := zapLogger.Named("postgres")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	config.ConnConfig.Tracer = zapTracer(logger)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &postgresStorage{pool: pool, logger: logger}
	if err := s.RunMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (p *postgresStorage) RunMigrations(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	p.logger.Debug("Migrations applied")
	return nil
}

func (p *postgresStorage) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := storage.Validate(tx); err != nil {
		return err
	}
	row := p.pool.QueryRow(ctx, `
		INSERT INTO launchpad_transactions (
			signature, wallet_address, action, mint, platform_id,
			amount_a, symbol_a, amount_b, symbol_b, status, error_message
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8::numeric, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		tx.Signature, tx.WalletAddress, tx.Action, tx.Mint, tx.PlatformID,
		tx.AmountA.String(), tx.SymbolA, tx.AmountB.String(), tx.SymbolB, tx.Status, tx.ErrorMessage,
	)
	if err := row.Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (p *postgresStorage) GetTransaction(ctx context.Context, signature string) (*models.Transaction, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM launchpad_transactions WHERE signature = $1`, signature)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (p *postgresStorage) ListTransactions(ctx context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+selectColumns+` FROM launchpad_transactions
		WHERE wallet_address = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, walletAddress, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (p *postgresStorage) UpdateTransactionStatus(ctx context.Context, signature string, status string, errorMsg string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE launchpad_transactions
		SET status = $2, error_message = $3, updated_at = now()
		WHERE signature = $1`, signature, status, errorMsg)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (p *postgresStorage) Close() {
	p.pool.Close()
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var (
		tx               models.Transaction
		amountA, amountB string
	)
	if err := row.Scan(&tx.ID, &tx.Signature, &tx.WalletAddress, &tx.Action, &tx.Mint, &tx.PlatformID,
		&amountA, &tx.SymbolA, &amountB, &tx.SymbolB, &tx.Status, &tx.ErrorMessage,
		&tx.CreatedAt, &tx.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if tx.AmountA, err = decimal.NewFromString(amountA); err != nil {
		return nil, fmt.Errorf("parse amount_a: %w", err)
	}
	if tx.AmountB, err = decimal.NewFromString(amountB); err != nil {
		return nil, fmt.Errorf("parse amount_b: %w", err)
	}
	return &tx, nil
}
