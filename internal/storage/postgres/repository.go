package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is implemented by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Backend implements storage.Backend using PostgreSQL.
type Backend struct {
	db *pgxpool.Pool
}

var _ storage.Backend = (*Backend)(nil)

// NewBackend wraps an open pool. Close closes the pool.
func NewBackend(db *pgxpool.Pool) *Backend {
	return &Backend{db: db}
}

// Pool exposes the connection pool for metrics collection.
func (b *Backend) Pool() *pgxpool.Pool {
	return b.db
}

// Ping checks database connectivity.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	b.db.Close()
	return nil
}

const userColumns = `id, name, email, address, role, password_hash, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Address, &u.Role, &u.PasswordHash, &u.CreatedAt)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, err
}

func (b *Backend) listUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// ListUsers retrieves all users in insertion order.
func (b *Backend) ListUsers(ctx context.Context) ([]domain.User, error) {
	return b.listUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY seq`)
}

// GetUser retrieves a user by ID.
func (b *Backend) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(b.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListUsersByEmail retrieves users with exactly this email in insertion order.
func (b *Backend) ListUsersByEmail(ctx context.Context, email string) ([]domain.User, error) {
	return b.listUsers(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 ORDER BY seq`, email)
}

func insertUser(ctx context.Context, q querier, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, address, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Address,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// AddUser inserts a user without checking email uniqueness.
func (b *Backend) AddUser(ctx context.Context, user *domain.User) error {
	return insertUser(ctx, b.db, user)
}

// AddUserUniqueEmail inserts a user inside a transaction that holds an
// advisory lock on the users table, so two concurrent calls with the same
// email cannot both pass the existence check.
func (b *Backend) AddUserUniqueEmail(ctx context.Context, user *domain.User) error {
	tx, err := b.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('users.email'))`); err != nil {
		return fmt.Errorf("lock users: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, user.Email).Scan(&exists); err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return storage.ErrEmailTaken
	}

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UpdateUserPassword replaces the stored password hash.
func (b *Backend) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	result, err := b.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const storeColumns = `id, owner_id, name, email, address, description, created_at`

func scanStore(row pgx.Row) (domain.Store, error) {
	var s domain.Store
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Email, &s.Address, &s.Description, &s.CreatedAt)
	s.CreatedAt = s.CreatedAt.UTC()
	return s, err
}

// ListStores retrieves all stores in insertion order.
func (b *Backend) ListStores(ctx context.Context) ([]domain.Store, error) {
	rows, err := b.db.Query(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	stores := make([]domain.Store, 0)
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}
	return stores, nil
}

// GetStore retrieves a store by ID.
func (b *Backend) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	s, err := scanStore(b.db.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

// AddStore inserts a store.
func (b *Backend) AddStore(ctx context.Context, store *domain.Store) error {
	query := `
		INSERT INTO stores (id, owner_id, name, email, address, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := b.db.Exec(ctx, query,
		store.ID,
		store.OwnerID,
		store.Name,
		store.Email,
		store.Address,
		store.Description,
		store.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

const ratingColumns = `id, user_id, store_id, score, created_at`

func scanRating(row pgx.Row) (domain.Rating, error) {
	var r domain.Rating
	err := row.Scan(&r.ID, &r.UserID, &r.StoreID, &r.Score, &r.CreatedAt)
	r.CreatedAt = r.CreatedAt.UTC()
	return r, err
}

func (b *Backend) listRatings(ctx context.Context, query string, args ...any) ([]domain.Rating, error) {
	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]domain.Rating, 0)
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

// ListRatings retrieves all ratings in insertion order.
func (b *Backend) ListRatings(ctx context.Context) ([]domain.Rating, error) {
	return b.listRatings(ctx, `SELECT `+ratingColumns+` FROM ratings ORDER BY seq`)
}

// ListRatingsByStore retrieves the ratings of one store in insertion order.
func (b *Backend) ListRatingsByStore(ctx context.Context, storeID string) ([]domain.Rating, error) {
	return b.listRatings(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE store_id = $1 ORDER BY seq`, storeID)
}

// GetRating retrieves the rating a user left for a store.
func (b *Backend) GetRating(ctx context.Context, userID, storeID string) (*domain.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE user_id = $1 AND store_id = $2`
	r, err := scanRating(b.db.QueryRow(ctx, query, userID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return &r, nil
}

// UpsertRating inserts a rating or overwrites score and timestamp of the
// existing one for the same user and store in a single statement.
func (b *Backend) UpsertRating(ctx context.Context, rating *domain.Rating) (bool, error) {
	query := `
		INSERT INTO ratings (id, user_id, store_id, score, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, store_id)
		DO UPDATE SET score = EXCLUDED.score, created_at = EXCLUDED.created_at
		RETURNING ` + ratingColumns

	proposedID := rating.ID
	stored, err := scanRating(b.db.QueryRow(ctx, query,
		rating.ID,
		rating.UserID,
		rating.StoreID,
		rating.Score,
		rating.CreatedAt,
	))
	if err != nil {
		return false, fmt.Errorf("upsert rating: %w", err)
	}

	*rating = stored
	return stored.ID == proposedID, nil
}

// GetSession returns the session user, or nil when no session is set.
func (b *Backend) GetSession(ctx context.Context) (*domain.User, error) {
	var data []byte
	err := b.db.QueryRow(ctx, `SELECT data FROM current_session WHERE slot = 1`).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return storage.DecodeSession(data)
}

// SetSession replaces the session record.
func (b *Backend) SetSession(ctx context.Context, user *domain.User) error {
	data, err := storage.EncodeSession(user)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO current_session (slot, user_id, data, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (slot)
		DO UPDATE SET user_id = EXCLUDED.user_id, data = EXCLUDED.data, updated_at = NOW()
	`
	if _, err := b.db.Exec(ctx, query, user.ID, string(data)); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// ClearSession deletes the session record if any.
func (b *Backend) ClearSession(ctx context.Context) error {
	if _, err := b.db.Exec(ctx, `DELETE FROM current_session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Count returns collection sizes.
func (b *Backend) Count(ctx context.Context) (domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM stores),
			(SELECT COUNT(*) FROM ratings)
	`
	var stats domain.DashboardStats
	if err := b.db.QueryRow(ctx, query).Scan(&stats.TotalUsers, &stats.TotalStores, &stats.TotalRatings); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count entities: %w", err)
	}
	return stats, nil
}
