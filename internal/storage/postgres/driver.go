package postgres

import (
	"context"
	"embed"
	"errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/kglearn/frontgate/internal/storage"
	"time"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Driver represents the PostgreSQL client record storage driver implementation
type Driver struct {
	dsn string
	db  *pgxpool.Pool

	// Now returns the current time; defaults to time.Now
	Now func() time.Time
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new empty PostgreSQL storage driver.
// Use Initialize to open the database connection.
func New(dsn string) *Driver {
	return &Driver{
		dsn: dsn,
	}
}

// Initialize migrates the database and opens the connection pool
func (driver *Driver) Initialize(ctx context.Context) error {
	// Perform SQL migrations
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, driver.dsn)
	if err != nil {
		return err
	}
	defer migrator.Close()
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	// Initialize the database connection pool
	pool, err := pgxpool.Connect(ctx, driver.dsn)
	if err != nil {
		return err
	}
	driver.db = pool
	return nil
}

// Client provides the PostgreSQL backed record store of a single client
func (driver *Driver) Client(clientHash string) storage.Store {
	return &ClientRepository{
		db:   driver.db,
		hash: clientHash,
	}
}

// TerminateExpired removes the records of all clients whose stored token is expired
func (driver *Driver) TerminateExpired(ctx context.Context) (int, error) {
	now := time.Now
	if driver.Now != nil {
		now = driver.Now
	}

	query, args := terminateExpiredQuery(now().UnixMilli())
	var n int
	if err := driver.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the database connection pool
func (driver *Driver) Close() {
	if driver.db != nil {
		driver.db.Close()
		driver.db = nil
	}
}

func terminateExpiredQuery(deadline int64) (string, []any) {
	return `WITH expired AS (
	SELECT DISTINCT client_hash FROM client_records WHERE record_key = $1 AND expires > 0 AND expires <= $2
), deleted AS (
	DELETE FROM client_records WHERE client_hash IN (SELECT client_hash FROM expired) RETURNING client_hash
)
SELECT COUNT(DISTINCT client_hash) FROM deleted`, []any{storage.KeyToken, deadline}
}
