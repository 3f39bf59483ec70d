package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/models"
	"civictrack-be/repositories"
	"civictrack-be/services"
	"civictrack-be/storage"
	"civictrack-be/utils"
)

type IssueController struct {
	issues   services.IssueService
	uploader *storage.Uploader
	logger   *zap.Logger
}

func NewIssueController(issues services.IssueService, uploader *storage.Uploader, logger *zap.Logger) *IssueController {
	return &IssueController{issues: issues, uploader: uploader, logger: logger}
}

// Create reports an issue in the caller's ward.
//
//	@Summary	Report an issue
//	@Tags		issues
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		body	body		dto.CreateIssueRequest	true	"Issue"
//	@Success	201		{object}	utils.Response
//	@Failure	400		{object}	utils.Response
//	@Failure	429		{object}	utils.Response
//	@Router		/issues [post]
func (h *IssueController) Create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req dto.CreateIssueRequest
	if !bindJSON(c, &req) {
		return
	}

	issue, err := h.issues.Create(c.Request.Context(), actor.ID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.Created(c, "Issue created successfully", issue)
}

// UploadAttachment stores a photo or document for a later Create call.
//
//	@Summary	Upload an issue attachment
//	@Tags		issues
//	@Accept		multipart/form-data
//	@Produce	json
//	@Security	Bearer
//	@Param		file	formData	file	true	"JPEG, PNG, WebP or PDF up to 10MB"
//	@Success	201		{object}	utils.Response
//	@Failure	400		{object}	utils.Response
//	@Failure	503		{object}	utils.Response
//	@Router		/issues/attachments [post]
func (h *IssueController) UploadAttachment(c *gin.Context) {
	if h.uploader == nil {
		utils.Error(c, http.StatusServiceUnavailable, "Attachment uploads are not configured", "")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "file is required", "")
		return
	}
	if header.Size > storage.MaxUploadSize {
		utils.Error(c, http.StatusBadRequest, storage.ErrUploadTooLarge.Error(), "")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Could not read the uploaded file", "")
		return
	}
	defer file.Close()

	obj, err := h.uploader.Upload(c.Request.Context(), file)
	if err != nil {
		if storage.IsRejected(err) {
			utils.Error(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		h.logger.Error("failed to store attachment", zap.String("filename", header.Filename), zap.Error(err))
		utils.Error(c, http.StatusBadGateway, "Failed to store attachment", err.Error())
		return
	}

	utils.Created(c, "Attachment uploaded successfully", dto.AttachmentResponse{
		Attachment:  obj.URL,
		ContentType: obj.ContentType,
		Size:        obj.Size,
	})
}

// List godoc
//
//	@Summary	List issues
//	@Tags		issues
//	@Produce	json
//	@Security	Bearer
//	@Param		status			query		string	false	"pending, in_progress, resolved or rejected"
//	@Param		priority		query		string	false	"high, normal or low"
//	@Param		department_id	query		string	false	"Department id"
//	@Param		constituency_id	query		string	false	"Constituency id"
//	@Param		panchayat_id	query		string	false	"Panchayat id"
//	@Param		ward_no			query		string	false	"Ward"
//	@Param		search			query		string	false	"Title, detail or locality contains"
//	@Param		sort			query		string	false	"newest, oldest or upvotes"
//	@Param		page			query		int		false	"Page"
//	@Param		limit			query		int		false	"Page size"
//	@Success	200				{object}	utils.Response
//	@Router		/issues [get]
func (h *IssueController) List(c *gin.Context) {
	var q dto.IssueListQuery
	if !bindQuery(c, &q) {
		return
	}
	filter, ok := issueFilter(c, q.ConstituencyID, q.PanchayatID, q.WardNo)
	if !ok {
		return
	}
	if filter.DepartmentID, ok = optionalID(c, q.DepartmentID); !ok {
		return
	}
	filter.Status = models.IssueStatus(q.Status)
	filter.Priority = models.Priority(q.Priority)
	filter.Search = q.Search

	opts := repositories.ListOptions{Page: q.Page, Limit: q.Limit, Sort: q.Sort}.Normalize()
	items, total, err := h.issues.List(c.Request.Context(), filter, opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OKPage(c, "Issues retrieved", items, total, opts.Page, opts.Limit)
}

// Mine lists the caller's own reports.
func (h *IssueController) Mine(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var q dto.ListQuery
	if !bindQuery(c, &q) {
		return
	}

	opts := repositories.ListOptions{Page: q.Page, Limit: q.Limit}.Normalize()
	items, total, err := h.issues.Mine(c.Request.Context(), actor.ID, opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OKPage(c, "Issues retrieved", items, total, opts.Page, opts.Limit)
}

// Statistics godoc
//
//	@Summary	Issue counts by status and priority
//	@Tags		issues
//	@Produce	json
//	@Security	Bearer
//	@Param		constituency_id	query		string	false	"Constituency id"
//	@Param		panchayat_id	query		string	false	"Panchayat id"
//	@Param		ward_no			query		string	false	"Ward"
//	@Success	200				{object}	utils.Response
//	@Router		/issues/statistics [get]
func (h *IssueController) Statistics(c *gin.Context) {
	var q dto.StatisticsQuery
	if !bindQuery(c, &q) {
		return
	}
	filter, ok := issueFilter(c, q.ConstituencyID, q.PanchayatID, q.WardNo)
	if !ok {
		return
	}

	stats, err := h.issues.Statistics(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Statistics retrieved", stats)
}

func (h *IssueController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	issue, err := h.issues.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Issue retrieved", issue)
}

// UpdateStatus godoc
//
//	@Summary	Change issue status
//	@Tags		issues
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		id		path		string					true	"Issue id"
//	@Param		body	body		dto.UpdateStatusRequest	true	"New status"
//	@Success	200		{object}	utils.Response
//	@Failure	403		{object}	utils.Response
//	@Router		/issues/{id}/status [put]
func (h *IssueController) UpdateStatus(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	issue, err := h.issues.UpdateStatus(c.Request.Context(), actor, id, models.IssueStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Issue status updated", issue)
}

// UpdateHandledBy records who handles the issue: a department employee id
// or a free-text label.
func (h *IssueController) UpdateHandledBy(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req dto.UpdateHandledByRequest
	if !bindJSON(c, &req) {
		return
	}

	issue, err := h.issues.UpdateHandledBy(c.Request.Context(), actor, id, req.HandledBy)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Issue handler updated", issue)
}

func (h *IssueController) SetDepartment(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req dto.SetDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}
	departmentID, ok := mustID(c, req.DepartmentID)
	if !ok {
		return
	}

	issue, err := h.issues.SetDepartment(c.Request.Context(), actor, id, departmentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Issue department updated", issue)
}

// AddFeedback godoc
//
//	@Summary	Rate a resolved issue
//	@Tags		issues
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		id		path		string				true	"Issue id"
//	@Param		body	body		dto.FeedbackRequest	true	"Feedback"
//	@Success	200		{object}	utils.Response
//	@Failure	400		{object}	utils.Response
//	@Router		/issues/{id}/feedback [put]
func (h *IssueController) AddFeedback(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req dto.FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	issue, err := h.issues.AddFeedback(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Feedback added successfully", issue)
}

func (h *IssueController) Delete(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}

	if err := h.issues.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Issue deleted successfully", nil)
}

func actorAndID(c *gin.Context) (services.Actor, primitive.ObjectID, bool) {
	actor, ok := mustActor(c)
	if !ok {
		return services.Actor{}, primitive.NilObjectID, false
	}
	id, ok := paramID(c, "id")
	return actor, id, ok
}

func issueFilter(c *gin.Context, constituencyID, panchayatID, wardNo string) (repositories.IssueFilter, bool) {
	var (
		filter repositories.IssueFilter
		err    error
	)
	if filter.ConstituencyID, err = dto.ParseOptionalID(constituencyID); err != nil {
		utils.Error(c, http.StatusBadRequest, "constituency_id must be a valid id", "")
		return filter, false
	}
	if filter.PanchayatID, err = dto.ParseOptionalID(panchayatID); err != nil {
		utils.Error(c, http.StatusBadRequest, "panchayat_id must be a valid id", "")
		return filter, false
	}
	filter.WardNo = wardNo
	return filter, true
}
