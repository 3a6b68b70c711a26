package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/repository"
)

// CatalogService owns the bibliographic side of the books table. The
// copy counter is never touched here; circulation goes through the two
// sanctioned counter procedures only.
type CatalogService struct {
	log  *zap.Logger
	repo repository.BookRepository
}

func NewCatalogService(repo repository.BookRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{
		log:  log,
		repo: repo,
	}
}

func (s *CatalogService) ListBooks(ctx context.Context, filter repository.BookFilter) (model.ListBooks, error) {
	return s.repo.ListBooks(ctx, filter)
}

func (s *CatalogService) GetBook(ctx context.Context, bookUid string) (model.Book, error) {
	return s.repo.GetBook(ctx, bookUid)
}

func (s *CatalogService) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	book := model.Book{
		BookUid:          uuid.NewString(),
		Title:            req.Title,
		Author:           req.Author,
		Publisher:        req.Publisher,
		ISBN:             req.ISBN,
		Year:             req.Year,
		Type:             req.Type,
		AccessType:       req.AccessType,
		TotalCopies:      req.TotalCopies,
		AvailableCopies:  req.TotalCopies,
		RequiresApproval: req.RequiresApproval,
		MaxBorrowDays:    req.MaxBorrowDays,
	}
	return s.repo.CreateBook(ctx, book)
}

func (s *CatalogService) UpdateBook(ctx context.Context, bookUid string, req model.UpdateBookRequest) (model.Book, error) {
	return s.repo.UpdateBook(ctx, bookUid, req)
}

func (s *CatalogService) DeleteBook(ctx context.Context, bookUid string) error {
	return s.repo.DeleteBook(ctx, bookUid)
}
