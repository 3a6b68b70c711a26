package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository interface {
	BookRepository
	BorrowingRepository
	ReservationRepository
	UserRepository
	ReviewRepository
}

type repository struct {
	db    *sqlx.DB
	cache *redis.Client
	log   *zap.Logger
}

// NewRepository wires the postgres pool and an optional redis client used
// as a role-set cache. cache may be nil; role lookups then always hit the db.
func NewRepository(db *sqlx.DB, cache *redis.Client, log *zap.Logger) (*repository, error) {
	return &repository{
		db:    db,
		cache: cache,
		log:   log.Named("repo"),
	}, nil
}

const (
	usersTableName        = `users`
	userRolesTableName    = `user_roles`
	booksTableName        = `books`
	borrowingsTableName   = `borrowings`
	reservationsTableName = `reservations`
	reviewsTableName      = `reviews`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func constraintViolated(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}

func isUniqueViolation(err error, constraint string) bool {
	return constraintViolated(err, pgerrcode.UniqueViolation, constraint)
}

func isForeignKeyViolation(err error) bool {
	return constraintViolated(err, pgerrcode.ForeignKeyViolation, "")
}

// inTx runs fn inside a transaction, rolling back on error.
func (r *repository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}
