package handler

import (
	"context"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/repository"
	"github.com/campuslib/library-service/pkg/kafka"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go -package=service_mocks

type CatalogService interface {
	ListBooks(ctx context.Context, filter repository.BookFilter) (model.ListBooks, error)
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, bookUid string, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, bookUid string) error
}

type CirculationService interface {
	Request(ctx context.Context, username string, req model.BorrowRequest) (model.BorrowingRecord, error)
	Approve(ctx context.Context, approvedBy, recordUid string) (model.BorrowingRecord, error)
	Reject(ctx context.Context, rejectedBy, recordUid string) (model.BorrowingRecord, error)
	Return(ctx context.Context, recordUid string) (model.BorrowingRecord, error)
	Renew(ctx context.Context, recordUid string) (model.BorrowingRecord, error)
	GetBorrowing(ctx context.Context, recordUid string) (model.BorrowingRecord, error)
	ListBorrowings(ctx context.Context, username string, overdueOnly bool) ([]model.BorrowingView, error)
	DecrementCopies(ctx context.Context, bookUid string) error
	IncrementCopies(ctx context.Context, bookUid string) (model.Book, error)
}

type ReservationService interface {
	Create(ctx context.Context, username string, req model.CreateReservationRequest) (model.Reservation, error)
	Get(ctx context.Context, reservationUid string) (model.Reservation, error)
	List(ctx context.Context, username string) ([]model.Reservation, error)
	Cancel(ctx context.Context, reservationUid string) (model.Reservation, error)
	Expire(ctx context.Context) (int64, error)
	HandleBookAvailable(ctx context.Context, event kafka.EventBookAvailable) error
}

type UserService interface {
	Register(ctx context.Context, req model.RegisterUserRequest) error
	GetUser(ctx context.Context, username string) (model.User, error)
	GetRoles(ctx context.Context, username string) ([]model.Role, error)
	GrantRole(ctx context.Context, username string, role model.Role) error
	RevokeRole(ctx context.Context, username string, role model.Role) error
}

type ReviewService interface {
	Create(ctx context.Context, username, bookUid string, req model.CreateReviewRequest) (model.Review, error)
	List(ctx context.Context, bookUid string) ([]model.Review, error)
	Get(ctx context.Context, id int) (model.Review, error)
	Delete(ctx context.Context, id int) error
}
