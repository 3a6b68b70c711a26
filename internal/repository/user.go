package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/errs"
	"github.com/campuslib/library-service/internal/model"
)

type UserRepository interface {
	RegisterUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, username string) (model.User, error)
	GetRoles(ctx context.Context, username string) ([]model.Role, error)
	GrantRole(ctx context.Context, username string, role model.Role) error
	RevokeRole(ctx context.Context, username string, role model.Role) error
}

const rolesCacheTTL = 5 * time.Minute

// RegisterUser creates the profile row and the default student grant in
// one transaction. The identity provider may replay its creation hook,
// so both inserts are idempotent.
func (r *repository) RegisterUser(ctx context.Context, user model.User) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
insert into users (username, name, email)
values ($1, $2, $3)
on conflict (username) do nothing`, user.Username, user.Name, user.Email); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
insert into user_roles (username, role)
values ($1, $2)
on conflict do nothing`, user.Username, model.DefaultRole)
		return err
	})
}

func (r *repository) GetUser(ctx context.Context, username string) (model.User, error) {
	query, args, err := qb.Select("username", "name", "email").
		From(usersTableName).
		Where(sq.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

// GetRoles resolves the role set, via the redis cache when available.
// The cache is safe to lose; a miss just costs a db round trip.
func (r *repository) GetRoles(ctx context.Context, username string) ([]model.Role, error) {
	if roles, ok := r.rolesFromCache(ctx, username); ok {
		return roles, nil
	}

	query, args, err := qb.Select("role").
		From(userRolesTableName).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var roles []model.Role
	if err := r.db.SelectContext(ctx, &roles, query, args...); err != nil {
		return nil, err
	}
	r.cacheRoles(ctx, username, roles)
	return roles, nil
}

func (r *repository) GrantRole(ctx context.Context, username string, role model.Role) error {
	_, err := r.db.ExecContext(ctx, `
insert into user_roles (username, role)
values ($1, $2)
on conflict do nothing`, username, role)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errs.ErrNotFound
		}
		return err
	}
	r.invalidateRoles(ctx, username)
	return nil
}

func (r *repository) RevokeRole(ctx context.Context, username string, role model.Role) error {
	res, err := r.db.ExecContext(ctx,
		`delete from user_roles where username = $1 and role = $2`, username, role)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	r.invalidateRoles(ctx, username)
	return nil
}

func rolesCacheKey(username string) string { return "roles:" + username }

func (r *repository) rolesFromCache(ctx context.Context, username string) ([]model.Role, bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, rolesCacheKey(username)).Bytes()
	if err != nil {
		return nil, false
	}
	var roles []model.Role
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, false
	}
	return roles, true
}

func (r *repository) cacheRoles(ctx context.Context, username string, roles []model.Role) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(roles)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, rolesCacheKey(username), raw, rolesCacheTTL).Err(); err != nil {
		r.log.Warn("roles cache set", zap.String("username", username), zap.Error(err))
	}
}

func (r *repository) invalidateRoles(ctx context.Context, username string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, rolesCacheKey(username)).Err(); err != nil {
		r.log.Warn("roles cache del", zap.String("username", username), zap.Error(err))
	}
}
