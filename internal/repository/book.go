package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/errs"
	"github.com/campuslib/library-service/internal/model"
)

type BookFilter struct {
	Query   string
	ShowAll bool
	Page    int
	Size    int
}

type BookRepository interface {
	ListBooks(ctx context.Context, filter BookFilter) (model.ListBooks, error)
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, bookUid string, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, bookUid string) error
	DecrementAvailableCopies(ctx context.Context, bookID int) error
	IncrementAvailableCopies(ctx context.Context, bookID int) (model.Book, error)
}

var bookColumns = []string{
	"id", "book_uid", "title", "author", "publisher", "isbn", "year",
	"type", "access_type", "total_copies", "available_copies",
	"requires_approval", "max_borrow_days",
}

func (r *repository) ListBooks(ctx context.Context, filter BookFilter) (model.ListBooks, error) {
	q := qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("id")

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"author": pattern},
			sq.ILike{"isbn": pattern},
		})
	}
	if !filter.ShowAll {
		q = q.Where(sq.Gt{"available_copies": 0})
	}
	if filter.Page != 0 && filter.Size != 0 {
		q = q.Limit(uint64(filter.Size)).Offset(uint64((filter.Page - 1) * filter.Size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	var books []model.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          filter.Page,
			PageSize:      filter.Size,
			TotalElements: len(books),
		},
		Items: books,
	}, nil
}

func (r *repository) GetBook(ctx context.Context, bookUid string) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"book_uid": bookUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}

	return book, nil
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("book_uid", "title", "author", "publisher", "isbn", "year",
			"type", "access_type", "total_copies", "available_copies",
			"requires_approval", "max_borrow_days").
		Values(book.BookUid, book.Title, book.Author, book.Publisher, book.ISBN, book.Year,
			book.Type, book.AccessType, book.TotalCopies, book.AvailableCopies,
			book.RequiresApproval, book.MaxBorrowDays).
		Suffix("returning " + joinColumns(bookColumns)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var created model.Book
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}
	return created, nil
}

func (r *repository) UpdateBook(ctx context.Context, bookUid string, req model.UpdateBookRequest) (model.Book, error) {
	set := map[string]interface{}{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Author != nil {
		set["author"] = *req.Author
	}
	if req.Publisher != nil {
		set["publisher"] = *req.Publisher
	}
	if req.ISBN != nil {
		set["isbn"] = *req.ISBN
	}
	if req.Year != nil {
		set["year"] = *req.Year
	}
	if req.Type != nil {
		set["type"] = *req.Type
	}
	if req.AccessType != nil {
		set["access_type"] = *req.AccessType
	}
	if req.RequiresApproval != nil {
		set["requires_approval"] = *req.RequiresApproval
	}
	if req.MaxBorrowDays != nil {
		set["max_borrow_days"] = *req.MaxBorrowDays
	}
	if len(set) == 0 {
		return r.GetBook(ctx, bookUid)
	}

	query, args, err := qb.Update(booksTableName).
		SetMap(set).
		Where(sq.Eq{"book_uid": bookUid}).
		Suffix("returning " + joinColumns(bookColumns)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var updated model.Book
	if err := r.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return updated, nil
}

func (r *repository) DeleteBook(ctx context.Context, bookUid string) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"book_uid": bookUid}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		// circulation history references the book; deletion would lose it
		if isForeignKeyViolation(err) {
			return errs.ErrBookReferenced
		}
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

// DecrementAvailableCopies is one of the two sanctioned mutators of the
// counter field. It is a single atomic clamp; it saturates at zero and is
// silent on exhaustion. Circulation paths that must fail on exhaustion use
// the conditional decrement inside their transaction instead.
func (r *repository) DecrementAvailableCopies(ctx context.Context, bookID int) error {
	q := `
update books
    set available_copies = greatest(available_copies - 1, 0)
where id = $1`
	res, err := r.db.ExecContext(ctx, q, bookID)
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

// IncrementAvailableCopies atomically bumps the counter, saturating at
// total_copies, and returns the resulting row so callers can publish the
// availability event.
func (r *repository) IncrementAvailableCopies(ctx context.Context, bookID int) (model.Book, error) {
	q := `
update books
    set available_copies = least(available_copies + 1, total_copies)
where id = $1
returning ` + joinColumns(bookColumns)

	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func joinColumns(cols []string) string {
	s := ""
	for i, c := range cols {
		if i > 0 {
			s += ", "
		}
		s += c
	}
	return s
}
