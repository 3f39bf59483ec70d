package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/repositories"
	"civictrack-be/services"
	"civictrack-be/utils"
)

type ConstituencyController struct {
	constituencies services.ConstituencyService
	logger         *zap.Logger
}

func NewConstituencyController(constituencies services.ConstituencyService, logger *zap.Logger) *ConstituencyController {
	return &ConstituencyController{constituencies: constituencies, logger: logger}
}

// List godoc
//
//	@Summary	List constituencies
//	@Tags		constituencies
//	@Produce	json
//	@Security	Bearer
//	@Param		page	query		int		false	"Page"
//	@Param		limit	query		int		false	"Page size"
//	@Param		search	query		string	false	"Name or code contains"
//	@Success	200		{object}	utils.Response
//	@Router		/constituencies [get]
func (h *ConstituencyController) List(c *gin.Context) {
	var q dto.ListQuery
	if !bindQuery(c, &q) {
		return
	}

	opts := repositories.ListOptions{Page: q.Page, Limit: q.Limit, Search: q.Search}.Normalize()
	items, total, err := h.constituencies.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OKPage(c, "Constituencies retrieved", items, total, opts.Page, opts.Limit)
}

func (h *ConstituencyController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	constituency, err := h.constituencies.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Constituency retrieved", constituency)
}

// Info returns a constituency with voter and ward counts.
//
//	@Summary	Constituency statistics
//	@Tags		constituencies
//	@Produce	json
//	@Security	Bearer
//	@Param		id	path		string	true	"Constituency id"
//	@Success	200	{object}	utils.Response
//	@Router		/constituencies/{id}/info [get]
func (h *ConstituencyController) Info(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	info, err := h.constituencies.GetInfo(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Constituency info retrieved", info)
}

// Create godoc
//
//	@Summary	Create a constituency
//	@Tags		constituencies
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		body	body		dto.CreateConstituencyRequest	true	"Constituency"
//	@Success	201		{object}	utils.Response
//	@Failure	400		{object}	utils.Response
//	@Router		/constituencies [post]
func (h *ConstituencyController) Create(c *gin.Context) {
	var req dto.CreateConstituencyRequest
	if !bindJSON(c, &req) {
		return
	}

	constituency, err := h.constituencies.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.Created(c, "Constituency created successfully", constituency)
}

// BulkCreate answers 201 even when some items fail; failures are listed in errors.
func (h *ConstituencyController) BulkCreate(c *gin.Context) {
	var req dto.BulkConstituencyRequest
	if !bindJSON(c, &req) {
		return
	}

	result := h.constituencies.BulkCreate(c.Request.Context(), req.Constituencies)
	utils.Created(c, bulkMessage(len(result.Created), len(result.Errors)), result)
}

func (h *ConstituencyController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateConstituencyRequest
	if !bindJSON(c, &req) {
		return
	}

	constituency, err := h.constituencies.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Constituency updated successfully", constituency)
}

func (h *ConstituencyController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.constituencies.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Constituency deleted successfully", nil)
}

type PanchayatController struct {
	panchayats services.PanchayatService
	logger     *zap.Logger
}

func NewPanchayatController(panchayats services.PanchayatService, logger *zap.Logger) *PanchayatController {
	return &PanchayatController{panchayats: panchayats, logger: logger}
}

// List godoc
//
//	@Summary	List panchayats
//	@Tags		panchayats
//	@Produce	json
//	@Security	Bearer
//	@Param		constituency_id	query		string	false	"Only panchayats of this constituency"
//	@Success	200				{object}	utils.Response
//	@Router		/panchayats [get]
func (h *PanchayatController) List(c *gin.Context) {
	var q dto.PanchayatQuery
	if !bindQuery(c, &q) {
		return
	}
	constituencyID, ok := optionalID(c, q.ConstituencyID)
	if !ok {
		return
	}

	items, err := h.panchayats.List(c.Request.Context(), constituencyID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Panchayats retrieved", items)
}

func (h *PanchayatController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	panchayat, err := h.panchayats.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Panchayat retrieved", panchayat)
}

// Create godoc
//
//	@Summary	Create a panchayat
//	@Tags		panchayats
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		body	body		dto.CreatePanchayatRequest	true	"Panchayat with at least one ward"
//	@Success	201		{object}	utils.Response
//	@Failure	400		{object}	utils.Response
//	@Router		/panchayats [post]
func (h *PanchayatController) Create(c *gin.Context) {
	var req dto.CreatePanchayatRequest
	if !bindJSON(c, &req) {
		return
	}

	panchayat, err := h.panchayats.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.Created(c, "Panchayat created successfully", panchayat)
}

func (h *PanchayatController) BulkCreate(c *gin.Context) {
	var req dto.BulkPanchayatRequest
	if !bindJSON(c, &req) {
		return
	}

	result := h.panchayats.BulkCreate(c.Request.Context(), req.Panchayats)
	utils.Created(c, bulkMessage(len(result.Created), len(result.Errors)), result)
}

func (h *PanchayatController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePanchayatRequest
	if !bindJSON(c, &req) {
		return
	}

	panchayat, err := h.panchayats.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Panchayat updated successfully", panchayat)
}

// AddWards appends wards to a panchayat.
func (h *PanchayatController) AddWards(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AddWardsRequest
	if !bindJSON(c, &req) {
		return
	}

	panchayat, err := h.panchayats.AddWards(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Wards added successfully", panchayat)
}

func (h *PanchayatController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.panchayats.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Panchayat deleted successfully", nil)
}

func bulkMessage(created, failed int) string {
	return fmt.Sprintf("%d created, %d failed", created, failed)
}
