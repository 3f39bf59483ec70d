package services

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
)

func TestUpvoteLifecycle(t *testing.T) {
	ctx := context.Background()
	w := newIssueWorld(t, nil)
	issue := w.create(t, newIssueRequest())
	voter := w.citizen("ravi@example.com", w.constituency, w.panchayat, "W2")

	_, err := w.svc.Upvotes.Add(ctx, w.reporter.ID, issue.ID)
	requireStatus(t, err, http.StatusBadRequest)
	assert.ErrorIs(t, err, ErrSelfUpvote)

	_, err = w.svc.Upvotes.Remove(ctx, voter.ID, issue.ID)
	assert.ErrorIs(t, err, ErrNotUpvoted)

	state, err := w.svc.Upvotes.Add(ctx, voter.ID, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Upvotes)
	assert.True(t, state.HasUpvoted)

	_, err = w.svc.Upvotes.Add(ctx, voter.ID, issue.ID)
	requireStatus(t, err, http.StatusBadRequest)
	assert.ErrorIs(t, err, ErrAlreadyUpvoted)

	state, err = w.svc.Upvotes.Check(ctx, w.reporter.ID, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Upvotes)
	assert.False(t, state.HasUpvoted)

	state, err = w.svc.Upvotes.Remove(ctx, voter.ID, issue.ID)
	require.NoError(t, err)
	assert.Zero(t, state.Upvotes)
	assert.False(t, state.HasUpvoted)

	_, err = w.svc.Upvotes.Check(ctx, voter.ID, primitive.NewObjectID())
	requireStatus(t, err, http.StatusNotFound)
}

func TestUpvoteConcurrentVotesCountOnce(t *testing.T) {
	ctx := context.Background()
	w := newIssueWorld(t, nil)
	issue := w.create(t, newIssueRequest())
	voter := w.addUser(models.RoleCitizen, "ravi@example.com")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.svc.Upvotes.Add(ctx, voter.ID, issue.ID)
		}()
	}
	wg.Wait()

	stored, err := w.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Upvotes)
	assert.Len(t, stored.UpvotedBy, 1)
}
