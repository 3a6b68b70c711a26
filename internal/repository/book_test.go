package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/campuslib/library-service/internal/errs"
)

func TestRepository_DecrementAvailableCopies(t *testing.T) {
	t.Parallel()

	t.Run("single clamped statement", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMockRepo(t)

		// the clamp lives in the statement itself; there is no prior read
		mock.ExpectExec(regexp.QuoteMeta("set available_copies = greatest(available_copies - 1, 0) where id = $1")).
			WithArgs(testBookID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.DecrementAvailableCopies(context.Background(), testBookID))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown book", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMockRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("set available_copies = greatest(available_copies - 1, 0) where id = $1")).
			WithArgs(testBookID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DecrementAvailableCopies(context.Background(), testBookID)
		require.True(t, errors.Is(err, errs.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_IncrementAvailableCopies(t *testing.T) {
	t.Parallel()

	t.Run("saturates at total_copies", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMockRepo(t)

		row := sqlmock.NewRows([]string{
			"id", "book_uid", "title", "author", "publisher", "isbn", "year",
			"type", "access_type", "total_copies", "available_copies",
			"requires_approval", "max_borrow_days",
		}).AddRow(testBookID, "f7cdc58f-2caf-4b15-9727-f89dcc629b27", "t", "a", "", "", 2017, "", "", 3, 3, false, 14)

		mock.ExpectQuery(regexp.QuoteMeta("set available_copies = least(available_copies + 1, total_copies) where id = $1")).
			WithArgs(testBookID).
			WillReturnRows(row)

		book, err := repo.IncrementAvailableCopies(context.Background(), testBookID)
		require.NoError(t, err)
		require.Equal(t, book.TotalCopies, book.AvailableCopies)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown book", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(regexp.QuoteMeta("set available_copies = least(available_copies + 1, total_copies) where id = $1")).
			WithArgs(testBookID).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.IncrementAvailableCopies(context.Background(), testBookID)
		require.True(t, errors.Is(err, errs.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
