package services

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/repositories"
)

type UpvoteService interface {
	Add(ctx context.Context, userID, issueID primitive.ObjectID) (*dto.UpvoteState, error)
	Remove(ctx context.Context, userID, issueID primitive.ObjectID) (*dto.UpvoteState, error)
	Check(ctx context.Context, userID, issueID primitive.ObjectID) (*dto.UpvoteState, error)
}

type upvoteService struct {
	repo   *repositories.Repository
	logger *zap.Logger
}

func NewUpvoteService(repo *repositories.Repository, logger *zap.Logger) UpvoteService {
	return &upvoteService{repo: repo, logger: logger}
}

func (s *upvoteService) Add(ctx context.Context, userID, issueID primitive.ObjectID) (*dto.UpvoteState, error) {
	issue, err := s.repo.Issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, notFoundOr(err, "issue")
	}
	if issue.ReportedBy == userID {
		return nil, reason(http.StatusBadRequest, ErrSelfUpvote)
	}
	if issue.HasUpvoted(userID) {
		return nil, reason(http.StatusBadRequest, ErrAlreadyUpvoted)
	}

	added, err := s.repo.Issues.AddUpvote(ctx, issueID, userID)
	if err != nil {
		s.logger.Error("failed to add upvote", zap.String("issue_id", issueID.Hex()), zap.Error(err))
		return nil, Internal("Failed to upvote issue", err)
	}
	if !added {
		// lost a race with a concurrent vote by the same user
		return nil, reason(http.StatusBadRequest, ErrAlreadyUpvoted)
	}
	return s.Check(ctx, userID, issueID)
}

func (s *upvoteService) Remove(ctx context.Context, userID, issueID primitive.ObjectID) (*dto.UpvoteState, error) {
	issue, err := s.repo.Issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, notFoundOr(err, "issue")
	}
	if !issue.HasUpvoted(userID) {
		return nil, reason(http.StatusBadRequest, ErrNotUpvoted)
	}

	removed, err := s.repo.Issues.RemoveUpvote(ctx, issueID, userID)
	if err != nil {
		s.logger.Error("failed to remove upvote", zap.String("issue_id", issueID.Hex()), zap.Error(err))
		return nil, Internal("Failed to remove upvote", err)
	}
	if !removed {
		return nil, reason(http.StatusBadRequest, ErrNotUpvoted)
	}
	return s.Check(ctx, userID, issueID)
}

func (s *upvoteService) Check(ctx context.Context, userID, issueID primitive.ObjectID) (*dto.UpvoteState, error) {
	issue, err := s.repo.Issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, notFoundOr(err, "issue")
	}
	return &dto.UpvoteState{
		IssueID:    issue.ID,
		Upvotes:    issue.Upvotes,
		HasUpvoted: issue.HasUpvoted(userID),
	}, nil
}
