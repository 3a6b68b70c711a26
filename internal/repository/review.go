package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/campuslib/library-service/internal/errs"
	"github.com/campuslib/library-service/internal/model"
)

type ReviewRepository interface {
	CreateReview(ctx context.Context, review model.Review) (model.Review, error)
	ListReviews(ctx context.Context, bookID int) ([]model.Review, error)
	GetReview(ctx context.Context, id int) (model.Review, error)
	DeleteReview(ctx context.Context, id int) error
}

var reviewColumns = []string{"id", "book_id", "username", "stars", "text", "created_at"}

func (r *repository) CreateReview(ctx context.Context, review model.Review) (model.Review, error) {
	query, args, err := qb.Insert(reviewsTableName).
		Columns("book_id", "username", "stars", "text").
		Values(review.BookID, review.Username, review.Stars, review.Text).
		Suffix("returning " + joinColumns(reviewColumns)).
		ToSql()
	if err != nil {
		return model.Review{}, err
	}

	var created model.Review
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return model.Review{}, err
	}
	return created, nil
}

func (r *repository) ListReviews(ctx context.Context, bookID int) ([]model.Review, error) {
	query, args, err := qb.Select(reviewColumns...).
		From(reviewsTableName).
		Where(sq.Eq{"book_id": bookID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, err
	}

	var items []model.Review
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) GetReview(ctx context.Context, id int) (model.Review, error) {
	query, args, err := qb.Select(reviewColumns...).
		From(reviewsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Review{}, err
	}

	var review model.Review
	if err := r.db.GetContext(ctx, &review, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Review{}, errs.ErrNotFound
		}
		return model.Review{}, err
	}
	return review, nil
}

func (r *repository) DeleteReview(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `delete from reviews where id = $1`, id)
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
	return nil
}
