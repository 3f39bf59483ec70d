package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/services"
	"civictrack-be/utils"
)

type UpvoteController struct {
	upvotes services.UpvoteService
	logger  *zap.Logger
}

func NewUpvoteController(upvotes services.UpvoteService, logger *zap.Logger) *UpvoteController {
	return &UpvoteController{upvotes: upvotes, logger: logger}
}

// Add godoc
//
//	@Summary	Upvote an issue
//	@Tags		upvotes
//	@Produce	json
//	@Security	Bearer
//	@Param		issueId	path		string	true	"Issue id"
//	@Success	200		{object}	utils.Response
//	@Failure	400		{object}	utils.Response
//	@Router		/upvotes/{issueId} [post]
func (h *UpvoteController) Add(c *gin.Context) {
	h.handle(c, "Issue upvoted", h.upvotes.Add)
}

func (h *UpvoteController) Remove(c *gin.Context) {
	h.handle(c, "Upvote removed", h.upvotes.Remove)
}

// Check reports whether the caller has upvoted the issue.
func (h *UpvoteController) Check(c *gin.Context) {
	h.handle(c, "Upvote status retrieved", h.upvotes.Check)
}

type upvoteOp func(ctx context.Context, userID, issueID primitive.ObjectID) (*dto.UpvoteState, error)

func (h *UpvoteController) handle(c *gin.Context, message string, op upvoteOp) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	issueID, ok := paramID(c, "issueId")
	if !ok {
		return
	}

	state, err := op(c.Request.Context(), actor.ID, issueID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, message, state)
}
