package postgres

import (
	"context"
	"errors"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/kglearn/frontgate/internal/storage"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// ClientRepository implements the storage.Store interface for a single client using PostgreSQL
type ClientRepository struct {
	db   *pgxpool.Pool
	hash string
}

var _ storage.Store = (*ClientRepository)(nil)

// Get retrieves the value stored under key
func (repo *ClientRepository) Get(ctx context.Context, key string) (string, bool, error) {
	sql, args, err := selectRecordQuery(repo.hash, key)
	if err != nil {
		return "", false, err
	}

	var value string
	if err := repo.db.QueryRow(ctx, sql, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set stores a value under key, replacing any existing one
func (repo *ClientRepository) Set(ctx context.Context, key, value string) error {
	sql, args, err := upsertRecordQuery(storage.NewRecord(repo.hash, key, value))
	if err != nil {
		return err
	}
	_, err = repo.db.Exec(ctx, sql, args...)
	return err
}

// Remove deletes the value stored under key
func (repo *ClientRepository) Remove(ctx context.Context, key string) error {
	sql, args, err := deleteRecordQuery(repo.hash, key)
	if err != nil {
		return err
	}
	_, err = repo.db.Exec(ctx, sql, args...)
	return err
}

func selectRecordQuery(hash, key string) (string, []any, error) {
	return psql.Select("record_value").
		From("client_records").
		Where(squirrel.Eq{"client_hash": hash, "record_key": key}).
		ToSql()
}

func upsertRecordQuery(record *storage.Record) (string, []any, error) {
	return psql.Insert("client_records").
		Columns("client_hash", "record_key", "record_value", "expires").
		Values(record.ClientHash, record.Key, record.Value, record.Expires).
		Suffix("ON CONFLICT (client_hash, record_key) DO UPDATE SET record_value = EXCLUDED.record_value, expires = EXCLUDED.expires, updated_at = NOW()").
		ToSql()
}

func deleteRecordQuery(hash, key string) (string, []any, error) {
	return psql.Delete("client_records").
		Where(squirrel.Eq{"client_hash": hash, "record_key": key}).
		ToSql()
}
