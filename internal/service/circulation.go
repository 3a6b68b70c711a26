package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/events"
	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/repository"
)

// CirculationRepository is the slice of the repository the borrowing
// state machine needs.
type CirculationRepository interface {
	repository.BorrowingRepository
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
	DecrementAvailableCopies(ctx context.Context, bookID int) error
	IncrementAvailableCopies(ctx context.Context, bookID int) (model.Book, error)
}

// CirculationService drives a borrowing record through
// pending -> {active, rejected} and active -> returned. All transition
// guards and the availability counter run atomically in the repository;
// this layer decides which path applies and emits availability events.
type CirculationService struct {
	log       *zap.Logger
	repo      CirculationRepository
	publisher events.Publisher
}

func NewCirculationService(repo CirculationRepository, publisher events.Publisher, log *zap.Logger) *CirculationService {
	return &CirculationService{
		log:       log,
		repo:      repo,
		publisher: publisher,
	}
}

// Request opens a borrowing lifecycle. Books that require approval get a
// PENDING record without touching the counter; the rest take a copy and
// go straight to ACTIVE in one transaction.
func (s *CirculationService) Request(ctx context.Context, username string, req model.BorrowRequest) (model.BorrowingRecord, error) {
	book, err := s.repo.GetBook(ctx, req.BookUid)
	if err != nil {
		return model.BorrowingRecord{}, err
	}

	recordUid := uuid.NewString()
	if book.RequiresApproval {
		return s.repo.CreatePendingBorrowing(ctx, recordUid, username, book.ID, req.Notes)
	}
	return s.repo.CreateActiveBorrowing(ctx, recordUid, username, book.ID, book.MaxBorrowDays, req.Notes)
}

func (s *CirculationService) Approve(ctx context.Context, approvedBy, recordUid string) (model.BorrowingRecord, error) {
	return s.repo.ApproveBorrowing(ctx, recordUid, approvedBy)
}

func (s *CirculationService) Reject(ctx context.Context, rejectedBy, recordUid string) (model.BorrowingRecord, error) {
	return s.repo.RejectBorrowing(ctx, recordUid, rejectedBy)
}

// Return closes an active record and gives the copy back. The published
// availability event is best effort: the return itself has already
// committed and must not be undone by a broker failure.
func (s *CirculationService) Return(ctx context.Context, recordUid string) (model.BorrowingRecord, error) {
	rec, book, err := s.repo.ReturnBorrowing(ctx, recordUid)
	if err != nil {
		return model.BorrowingRecord{}, err
	}
	if err := s.publisher.PublishBookAvailable(book); err != nil {
		s.log.Warn("publish book available",
			zap.String("bookUid", book.BookUid), zap.Error(err))
	}
	return rec, nil
}

func (s *CirculationService) Renew(ctx context.Context, recordUid string) (model.BorrowingRecord, error) {
	return s.repo.RenewBorrowing(ctx, recordUid)
}

// DecrementCopies and IncrementCopies expose the two sanctioned counter
// procedures for staff corrections (lost or recovered copies). Both are
// saturating single-statement clamps in the repository.
func (s *CirculationService) DecrementCopies(ctx context.Context, bookUid string) error {
	book, err := s.repo.GetBook(ctx, bookUid)
	if err != nil {
		return err
	}
	return s.repo.DecrementAvailableCopies(ctx, book.ID)
}

func (s *CirculationService) IncrementCopies(ctx context.Context, bookUid string) (model.Book, error) {
	book, err := s.repo.GetBook(ctx, bookUid)
	if err != nil {
		return model.Book{}, err
	}
	updated, err := s.repo.IncrementAvailableCopies(ctx, book.ID)
	if err != nil {
		return model.Book{}, err
	}
	if err := s.publisher.PublishBookAvailable(updated); err != nil {
		s.log.Warn("publish book available",
			zap.String("bookUid", updated.BookUid), zap.Error(err))
	}
	return updated, nil
}

func (s *CirculationService) GetBorrowing(ctx context.Context, recordUid string) (model.BorrowingRecord, error) {
	return s.repo.GetBorrowing(ctx, recordUid)
}

func (s *CirculationService) ListBorrowings(ctx context.Context, username string, overdueOnly bool) ([]model.BorrowingView, error) {
	items, err := s.repo.ListBorrowings(ctx, username, overdueOnly)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range items {
		items[i].Overdue = items[i].BorrowingRecord.Overdue(now)
	}
	return items, nil
}
