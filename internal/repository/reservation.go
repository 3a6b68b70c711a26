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

type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservationUid, username string, bookID int) (model.Reservation, error)
	GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error)
	ListReservations(ctx context.Context, username string) ([]model.Reservation, error)
	CancelReservation(ctx context.Context, reservationUid string) (model.Reservation, error)
	ExpireReservations(ctx context.Context) (int64, error)
	MarkReservationsNotified(ctx context.Context, bookID int) (int64, error)
}

const reservationActiveConstraint = "reservations_active_uniq"

var reservationColumns = []string{
	"id", "reservation_uid", "username", "book_id", "status",
	"reservation_date", "expiry_date", "fulfilled_date", "notified",
}

func (r *repository) CreateReservation(ctx context.Context, reservationUid, username string, bookID int) (model.Reservation, error) {
	q := `
insert into reservations (reservation_uid, username, book_id, status, reservation_date, expiry_date)
values ($1, $2, $3, $4, now(), now() + make_interval(days => $5))
returning ` + joinColumns(reservationColumns)

	var res model.Reservation
	if err := r.db.GetContext(ctx, &res, q,
		reservationUid, username, bookID, model.ReservationActive, model.ReservationTTLDays); err != nil {
		if isUniqueViolation(err, reservationActiveConstraint) {
			return model.Reservation{}, errs.ErrDuplicateReservation
		}
		r.log.Error("CreateReservation", zap.String("q", q))
		return model.Reservation{}, err
	}
	return res, nil
}

func (r *repository) GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{"reservation_uid": reservationUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}

	var res model.Reservation
	if err := r.db.GetContext(ctx, &res, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, err
	}
	return res, nil
}

func (r *repository) ListReservations(ctx context.Context, username string) ([]model.Reservation, error) {
	q := qb.Select(reservationColumns...).
		From(reservationsTableName).
		OrderBy("reservation_date desc")
	if username != "" {
		q = q.Where(sq.Eq{"username": username})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var items []model.Reservation
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CancelReservation(ctx context.Context, reservationUid string) (model.Reservation, error) {
	q := `
update reservations
    set status = $2
where reservation_uid = $1 and status = $3
returning ` + joinColumns(reservationColumns)

	var res model.Reservation
	if err := r.db.GetContext(ctx, &res, q,
		reservationUid, model.ReservationCancelled, model.ReservationActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, r.reservationFailure(ctx, reservationUid)
		}
		return model.Reservation{}, err
	}
	return res, nil
}

// ExpireReservations is the manual staff sweep over lapsed holds.
func (r *repository) ExpireReservations(ctx context.Context) (int64, error) {
	q := `
update reservations
    set status = $1
where status = $2 and expiry_date < now()`
	res, err := r.db.ExecContext(ctx, q, model.ReservationExpired, model.ReservationActive)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkReservationsNotified flags the active holders of a book that just
// got a copy back. Delivery of the notification itself is someone else's
// concern; the flag only prevents repeat events from re-notifying.
func (r *repository) MarkReservationsNotified(ctx context.Context, bookID int) (int64, error) {
	q := `
update reservations
    set notified = true
where book_id = $1 and status = $2 and notified = false`
	res, err := r.db.ExecContext(ctx, q, bookID, model.ReservationActive)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) reservationFailure(ctx context.Context, reservationUid string) error {
	var status model.ReservationStatus
	err := r.db.GetContext(ctx, &status,
		`select status from reservations where reservation_uid = $1`, reservationUid)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	if err != nil {
		return err
	}
	return errs.ErrInvalidTransition
}
