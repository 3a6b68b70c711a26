package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/repository"
)

type ReviewServiceRepository interface {
	repository.ReviewRepository
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
}

// ReviewService is plain CRUD with no link into circulation state.
type ReviewService struct {
	log  *zap.Logger
	repo ReviewServiceRepository
}

func NewReviewService(repo ReviewServiceRepository, log *zap.Logger) *ReviewService {
	return &ReviewService{
		log:  log,
		repo: repo,
	}
}

func (s *ReviewService) Create(ctx context.Context, username, bookUid string, req model.CreateReviewRequest) (model.Review, error) {
	book, err := s.repo.GetBook(ctx, bookUid)
	if err != nil {
		return model.Review{}, err
	}
	return s.repo.CreateReview(ctx, model.Review{
		BookID:   book.ID,
		Username: username,
		Stars:    req.Stars,
		Text:     req.Text,
	})
}

func (s *ReviewService) List(ctx context.Context, bookUid string) ([]model.Review, error) {
	book, err := s.repo.GetBook(ctx, bookUid)
	if err != nil {
		return nil, err
	}
	return s.repo.ListReviews(ctx, book.ID)
}

func (s *ReviewService) Get(ctx context.Context, id int) (model.Review, error) {
	return s.repo.GetReview(ctx, id)
}

func (s *ReviewService) Delete(ctx context.Context, id int) error {
	return s.repo.DeleteReview(ctx, id)
}
