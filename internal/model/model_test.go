package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuslib/library-service/internal/model"
)

func TestBorrowingStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	allowed := map[model.BorrowingStatus][]model.BorrowingStatus{
		model.StatusPending: {model.StatusActive, model.StatusRejected},
		model.StatusActive:  {model.StatusReturned},
	}
	all := []model.BorrowingStatus{model.StatusPending, model.StatusActive, model.StatusRejected, model.StatusReturned}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			require.Equalf(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestBorrowingStatus_Terminal(t *testing.T) {
	t.Parallel()

	require.True(t, model.StatusReturned.Terminal())
	require.True(t, model.StatusRejected.Terminal())
	require.False(t, model.StatusPending.Terminal())
	require.False(t, model.StatusActive.Terminal())
}

func TestBorrowingRecord_Overdue(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	require.True(t, model.BorrowingRecord{Status: model.StatusActive, DueDate: &past}.Overdue(now))
	require.False(t, model.BorrowingRecord{Status: model.StatusActive, DueDate: &future}.Overdue(now))
	// returned records are never overdue, whatever the due date says
	require.False(t, model.BorrowingRecord{Status: model.StatusReturned, DueDate: &past}.Overdue(now))
	require.False(t, model.BorrowingRecord{Status: model.StatusActive}.Overdue(now))
}
