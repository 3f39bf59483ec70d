package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/services"
	"civictrack-be/utils"
)

type DashboardController struct {
	dashboard services.DashboardService
	logger    *zap.Logger
}

func NewDashboardController(dashboard services.DashboardService, logger *zap.Logger) *DashboardController {
	return &DashboardController{dashboard: dashboard, logger: logger}
}

// Get builds the dashboard of the caller's constituency. Admins pick the
// constituency with constituency_id.
//
//	@Summary	MLA dashboard
//	@Tags		mla-dashboard
//	@Produce	json
//	@Security	Bearer
//	@Param		constituency_id	query		string	false	"Constituency id, admins only"
//	@Success	200				{object}	utils.Response
//	@Failure	404				{object}	utils.Response
//	@Router		/mla-dashboard [get]
func (h *DashboardController) Get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var q dto.DashboardQuery
	if !bindQuery(c, &q) {
		return
	}

	var (
		data *dto.Dashboard
		err  error
	)
	switch {
	case actor.Role.IsAdmin():
		if q.ConstituencyID == "" {
			utils.Error(c, http.StatusBadRequest, "constituency_id is required for admins", "")
			return
		}
		id, ok := mustID(c, q.ConstituencyID)
		if !ok {
			return
		}
		data, err = h.dashboard.ForConstituency(c.Request.Context(), id)
	default:
		data, err = h.dashboard.ForMLA(c.Request.Context(), actor.ID)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Dashboard retrieved", data)
}
