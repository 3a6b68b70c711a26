package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/repository"
	"github.com/campuslib/library-service/pkg/kafka"
)

type ReservationServiceRepository interface {
	repository.ReservationRepository
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
}

// ReservationService tracks standing claims on unavailable books. Nothing
// here promotes a reservation to FULFILLED automatically; availability
// events only flag waiting holders, and expiry is a manual staff sweep.
type ReservationService struct {
	log  *zap.Logger
	repo ReservationServiceRepository
}

func NewReservationService(repo ReservationServiceRepository, log *zap.Logger) *ReservationService {
	return &ReservationService{
		log:  log,
		repo: repo,
	}
}

func (s *ReservationService) Create(ctx context.Context, username string, req model.CreateReservationRequest) (model.Reservation, error) {
	book, err := s.repo.GetBook(ctx, req.BookUid)
	if err != nil {
		return model.Reservation{}, err
	}
	return s.repo.CreateReservation(ctx, uuid.NewString(), username, book.ID)
}

func (s *ReservationService) Get(ctx context.Context, reservationUid string) (model.Reservation, error) {
	return s.repo.GetReservation(ctx, reservationUid)
}

func (s *ReservationService) List(ctx context.Context, username string) ([]model.Reservation, error) {
	return s.repo.ListReservations(ctx, username)
}

func (s *ReservationService) Cancel(ctx context.Context, reservationUid string) (model.Reservation, error) {
	return s.repo.CancelReservation(ctx, reservationUid)
}

func (s *ReservationService) Expire(ctx context.Context) (int64, error) {
	return s.repo.ExpireReservations(ctx)
}

// HandleBookAvailable reacts to an availability increment by flagging the
// book's active reservations. Invoked from the kafka consumer loop.
func (s *ReservationService) HandleBookAvailable(ctx context.Context, event kafka.EventBookAvailable) error {
	n, err := s.repo.MarkReservationsNotified(ctx, event.BookID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("reservations flagged for pickup",
			zap.String("bookUid", event.BookUid),
			zap.Int64("count", n))
	}
	return nil
}
