package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/errs"
	"github.com/campuslib/library-service/internal/model"
)

type BorrowingRepository interface {
	CreatePendingBorrowing(ctx context.Context, recordUid, username string, bookID int, notes string) (model.BorrowingRecord, error)
	CreateActiveBorrowing(ctx context.Context, recordUid, username string, bookID, maxBorrowDays int, notes string) (model.BorrowingRecord, error)
	GetBorrowing(ctx context.Context, recordUid string) (model.BorrowingRecord, error)
	ListBorrowings(ctx context.Context, username string, overdueOnly bool) ([]model.BorrowingView, error)
	ApproveBorrowing(ctx context.Context, recordUid, approvedBy string) (model.BorrowingRecord, error)
	RejectBorrowing(ctx context.Context, recordUid, rejectedBy string) (model.BorrowingRecord, error)
	ReturnBorrowing(ctx context.Context, recordUid string) (model.BorrowingRecord, model.Book, error)
	RenewBorrowing(ctx context.Context, recordUid string) (model.BorrowingRecord, error)
}

const borrowingOpenConstraint = "borrowings_open_uniq"

var borrowingColumns = []string{
	"id", "record_uid", "username", "book_id", "status", "request_date",
	"approval_date", "borrow_date", "due_date", "return_date",
	"renewal_count", "approved_by", "notes",
}

// decrementIfAvailable is the conditional form of the counter decrement:
// it refuses to run the counter below zero, which is how approvals and
// self-service borrows racing on the last copy lose cleanly.
func decrementIfAvailable(ctx context.Context, tx *sqlx.Tx, bookID int) error {
	q := `
update books
    set available_copies = available_copies - 1
where id = $1 and available_copies > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNoCopiesAvailable
	}
	return nil
}

// CreatePendingBorrowing records a request awaiting librarian approval.
// The status is forced to PENDING here, never taken from client input.
func (r *repository) CreatePendingBorrowing(ctx context.Context, recordUid, username string, bookID int, notes string) (model.BorrowingRecord, error) {
	query, args, err := qb.Insert(borrowingsTableName).
		Columns("record_uid", "username", "book_id", "status", "request_date", "notes").
		Values(recordUid, username, bookID, model.StatusPending, sq.Expr("now()"), notes).
		Suffix("returning " + joinColumns(borrowingColumns)).
		ToSql()
	if err != nil {
		return model.BorrowingRecord{}, err
	}

	var rec model.BorrowingRecord
	if err := r.db.GetContext(ctx, &rec, query, args...); err != nil {
		if isUniqueViolation(err, borrowingOpenConstraint) {
			return model.BorrowingRecord{}, errs.ErrAlreadyBorrowed
		}
		r.log.Error("CreatePendingBorrowing", zap.String("q", query), zap.Any("args", args))
		return model.BorrowingRecord{}, err
	}
	return rec, nil
}

// CreateActiveBorrowing is the self-service path for books that need no
// approval: the conditional decrement and the ACTIVE insert are one
// transaction, so a failed decrement leaves no record behind.
func (r *repository) CreateActiveBorrowing(ctx context.Context, recordUid, username string, bookID, maxBorrowDays int, notes string) (model.BorrowingRecord, error) {
	var rec model.BorrowingRecord
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := decrementIfAvailable(ctx, tx, bookID); err != nil {
			return err
		}

		q := `
insert into borrowings (record_uid, username, book_id, status, request_date, borrow_date, due_date, notes)
values ($1, $2, $3, $4, now(), now(), now() + make_interval(days => $5), $6)
returning ` + joinColumns(borrowingColumns)
		if err := tx.GetContext(ctx, &rec, q, recordUid, username, bookID, model.StatusActive, maxBorrowDays, notes); err != nil {
			if isUniqueViolation(err, borrowingOpenConstraint) {
				return errs.ErrAlreadyBorrowed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return model.BorrowingRecord{}, err
	}
	return rec, nil
}

func (r *repository) GetBorrowing(ctx context.Context, recordUid string) (model.BorrowingRecord, error) {
	query, args, err := qb.Select(borrowingColumns...).
		From(borrowingsTableName).
		Where(sq.Eq{"record_uid": recordUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.BorrowingRecord{}, err
	}

	var rec model.BorrowingRecord
	if err := r.db.GetContext(ctx, &rec, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowingRecord{}, errs.ErrNotFound
		}
		return model.BorrowingRecord{}, err
	}
	return rec, nil
}

func (r *repository) ListBorrowings(ctx context.Context, username string, overdueOnly bool) ([]model.BorrowingView, error) {
	q := qb.Select("br.id", "br.record_uid", "br.username", "br.book_id", "br.status",
		"br.request_date", "br.approval_date", "br.borrow_date", "br.due_date",
		"br.return_date", "br.renewal_count", "br.approved_by", "br.notes",
		"b.book_uid", "b.title", "b.author", "u.name as holder_name").
		From(borrowingsTableName + " br").
		Join(booksTableName + " b on b.id = br.book_id").
		Join(usersTableName + " u on u.username = br.username").
		OrderBy("br.request_date desc")

	if username != "" {
		q = q.Where(sq.Eq{"br.username": username})
	}
	if overdueOnly {
		q = q.Where(sq.Eq{"br.status": model.StatusActive}).
			Where(sq.Expr("br.due_date < now()"))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var items []model.BorrowingView
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// ApproveBorrowing transitions PENDING -> ACTIVE and takes a copy as one
// all-or-nothing unit. If the book has no copies left the whole
// transaction rolls back and the record stays PENDING.
func (r *repository) ApproveBorrowing(ctx context.Context, recordUid, approvedBy string) (model.BorrowingRecord, error) {
	var rec model.BorrowingRecord
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		q := `
update borrowings br
    set status        = $2,
        approved_by   = $3,
        approval_date = now(),
        borrow_date   = now(),
        due_date      = now() + make_interval(days => b.max_borrow_days)
from books b
where b.id = br.book_id and br.record_uid = $1 and br.status = $4
returning ` + prefixColumns("br", borrowingColumns)
		if err := tx.GetContext(ctx, &rec, q, recordUid, model.StatusActive, approvedBy, model.StatusPending); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return r.transitionFailure(ctx, recordUid)
			}
			return err
		}
		return decrementIfAvailable(ctx, tx, rec.BookID)
	})
	if err != nil {
		return model.BorrowingRecord{}, err
	}
	return rec, nil
}

func (r *repository) RejectBorrowing(ctx context.Context, recordUid, rejectedBy string) (model.BorrowingRecord, error) {
	q := `
update borrowings
    set status        = $2,
        approved_by   = $3,
        approval_date = now()
where record_uid = $1 and status = $4
returning ` + joinColumns(borrowingColumns)

	var rec model.BorrowingRecord
	if err := r.db.GetContext(ctx, &rec, q, recordUid, model.StatusRejected, rejectedBy, model.StatusPending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowingRecord{}, r.transitionFailure(ctx, recordUid)
		}
		return model.BorrowingRecord{}, err
	}
	return rec, nil
}

// ReturnBorrowing transitions ACTIVE -> RETURNED and hands the copy back.
// The increment saturates at total_copies, so an over-return cannot break
// the counter invariant. The updated book row is returned for the
// availability event.
func (r *repository) ReturnBorrowing(ctx context.Context, recordUid string) (model.BorrowingRecord, model.Book, error) {
	var (
		rec  model.BorrowingRecord
		book model.Book
	)
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		q := `
update borrowings
    set status      = $2,
        return_date = now()
where record_uid = $1 and status = $3
returning ` + joinColumns(borrowingColumns)
		if err := tx.GetContext(ctx, &rec, q, recordUid, model.StatusReturned, model.StatusActive); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return r.transitionFailure(ctx, recordUid)
			}
			return err
		}

		inc := `
update books
    set available_copies = least(available_copies + 1, total_copies)
where id = $1
returning ` + joinColumns(bookColumns)
		return tx.GetContext(ctx, &book, inc, rec.BookID)
	})
	if err != nil {
		return model.BorrowingRecord{}, model.Book{}, err
	}
	return rec, book, nil
}

// RenewBorrowing extends the due date from the current due date, not from
// now, and bumps the renewal counter. The cap is enforced in the same
// statement as the status guard so two racing renewals cannot both pass.
func (r *repository) RenewBorrowing(ctx context.Context, recordUid string) (model.BorrowingRecord, error) {
	q := `
update borrowings br
    set due_date      = br.due_date + make_interval(days => b.max_borrow_days),
        renewal_count = br.renewal_count + 1
from books b
where b.id = br.book_id and br.record_uid = $1 and br.status = $2 and br.renewal_count < $3
returning ` + prefixColumns("br", borrowingColumns)

	var rec model.BorrowingRecord
	if err := r.db.GetContext(ctx, &rec, q, recordUid, model.StatusActive, model.MaxRenewals); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowingRecord{}, r.renewFailure(ctx, recordUid)
		}
		return model.BorrowingRecord{}, err
	}
	return rec, nil
}

// transitionFailure tells a missing record apart from one in the wrong state
// after a guarded update matched no rows.
func (r *repository) transitionFailure(ctx context.Context, recordUid string) error {
	var status model.BorrowingStatus
	err := r.db.GetContext(ctx, &status,
		`select status from borrowings where record_uid = $1`, recordUid)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	if err != nil {
		return err
	}
	return errs.ErrInvalidTransition
}

func (r *repository) renewFailure(ctx context.Context, recordUid string) error {
	var rec struct {
		Status       model.BorrowingStatus `db:"status"`
		RenewalCount int                   `db:"renewal_count"`
	}
	err := r.db.GetContext(ctx, &rec,
		`select status, renewal_count from borrowings where record_uid = $1`, recordUid)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	if err != nil {
		return err
	}
	if rec.Status == model.StatusActive && rec.RenewalCount >= model.MaxRenewals {
		return errs.ErrRenewalLimitReached
	}
	return errs.ErrInvalidTransition
}

func prefixColumns(prefix string, cols []string) string {
	s := ""
	for i, c := range cols {
		if i > 0 {
			s += ", "
		}
		s += prefix + "." + c
	}
	return s
}
