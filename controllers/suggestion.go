package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/services"
	"civictrack-be/utils"
)

type SuggestionController struct {
	suggestions services.SuggestionService
	logger      *zap.Logger
}

func NewSuggestionController(suggestions services.SuggestionService, logger *zap.Logger) *SuggestionController {
	return &SuggestionController{suggestions: suggestions, logger: logger}
}

// Get returns the caller's report for a month, generating it on first read.
//
//	@Summary	Monthly suggestions for an MLA
//	@Tags		ai-suggestions
//	@Produce	json
//	@Security	Bearer
//	@Param		month	query		string	false	"YYYY-MM, defaults to the current month"
//	@Param		mla_id	query		string	false	"MLA id, admins only"
//	@Success	200		{object}	utils.Response
//	@Router		/ai-suggestions [get]
func (h *SuggestionController) Get(c *gin.Context) {
	var q dto.SuggestionQuery
	if !bindQuery(c, &q) {
		return
	}
	mlaID, ok := resolveMLA(c, q.MLAID)
	if !ok {
		return
	}

	report, err := h.suggestions.GetForMLA(c.Request.Context(), mlaID, h.month(q.Month))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Suggestions retrieved", report)
}

// History godoc
//
//	@Summary	Recent suggestion reports
//	@Tags		ai-suggestions
//	@Produce	json
//	@Security	Bearer
//	@Param		limit	query		int		false	"Number of months, default 6"
//	@Param		mla_id	query		string	false	"MLA id, admins only"
//	@Success	200		{object}	utils.Response
//	@Router		/ai-suggestions/history [get]
func (h *SuggestionController) History(c *gin.Context) {
	var q dto.SuggestionQuery
	if !bindQuery(c, &q) {
		return
	}
	mlaID, ok := resolveMLA(c, q.MLAID)
	if !ok {
		return
	}

	list, err := h.suggestions.History(c.Request.Context(), mlaID, q.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Suggestion history retrieved", list)
}

// Generate builds the report now instead of waiting for the monthly job.
func (h *SuggestionController) Generate(c *gin.Context) {
	var req dto.GenerateSuggestionsRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	mlaID, ok := resolveMLA(c, req.MLAID)
	if !ok {
		return
	}

	report, err := h.suggestions.GenerateForMLA(c.Request.Context(), mlaID, h.month(req.Month))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Suggestions generated", report)
}

// Cleanup godoc
//
//	@Summary	Archive reports older than a month
//	@Tags		ai-suggestions
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		body	body		dto.CleanupSuggestionsRequest	true	"Cutoff month"
//	@Success	200		{object}	utils.Response
//	@Router		/ai-suggestions/cleanup [post]
func (h *SuggestionController) Cleanup(c *gin.Context) {
	var req dto.CleanupSuggestionsRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.suggestions.MarkOldInactive(c.Request.Context(), req.CutoffMonth)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Old suggestions archived", dto.CleanupResponse{CutoffMonth: req.CutoffMonth, Updated: updated})
}

func (h *SuggestionController) month(requested string) string {
	if requested == "" {
		return h.suggestions.CurrentMonth()
	}
	return requested
}

// resolveMLA picks whose reports are read: admins name an MLA, everyone
// else reads their own.
func resolveMLA(c *gin.Context, requested string) (primitive.ObjectID, bool) {
	actor, ok := mustActor(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	if !actor.Role.IsAdmin() {
		return actor.ID, true
	}
	if requested == "" {
		utils.Error(c, http.StatusBadRequest, "mla_id is required for admins", "")
		return primitive.NilObjectID, false
	}
	return mustID(c, requested)
}
