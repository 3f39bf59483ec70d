// Package controllers turns HTTP requests into service calls and service
// results into the response envelope.
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/middlewares"
	"civictrack-be/services"
	"civictrack-be/storage"
	"civictrack-be/utils"
)

// Controller groups every handler so the router takes one dependency.
type Controller struct {
	Auth           *AuthController
	Constituencies *ConstituencyController
	Panchayats     *PanchayatController
	Issues         *IssueController
	Upvotes        *UpvoteController
	Departments    *DepartmentController
	Suggestions    *SuggestionController
	Dashboard      *DashboardController
	Health         *HealthController
}

// Options carries what handlers need beyond the services.
type Options struct {
	Cookie CookieSettings
	// Uploader is nil when no object store is configured.
	Uploader *storage.Uploader
	Checks   map[string]HealthCheck
}

func NewController(svc *services.Service, opts Options, logger *zap.Logger) *Controller {
	return &Controller{
		Auth:           NewAuthController(svc.Auth, opts.Cookie, logger),
		Constituencies: NewConstituencyController(svc.Constituencies, logger),
		Panchayats:     NewPanchayatController(svc.Panchayats, logger),
		Issues:         NewIssueController(svc.Issues, opts.Uploader, logger),
		Upvotes:        NewUpvoteController(svc.Upvotes, logger),
		Departments:    NewDepartmentController(svc.Departments, logger),
		Suggestions:    NewSuggestionController(svc.Suggestions, logger),
		Dashboard:      NewDashboardController(svc.Dashboard, logger),
		Health:         NewHealthController(opts.Checks),
	}
}

// respondError writes err as a failure envelope. AppErrors keep their
// status; anything else is an unexpected 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	appErr, ok := services.AsAppError(err)
	if !ok {
		logger.Error("unhandled error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.Error(c, http.StatusInternalServerError, "Something went wrong", err.Error())
		return
	}

	detail := ""
	if appErr.Status >= http.StatusInternalServerError && appErr.Err != nil {
		detail = appErr.Err.Error()
	}
	utils.Error(c, appErr.Status, appErr.Message, detail)
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.Error(c, http.StatusBadRequest, utils.FormatValidationError(err), "")
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		utils.Error(c, http.StatusBadRequest, utils.FormatValidationError(err), "")
		return false
	}
	return true
}

// paramID parses the named path parameter as an ObjectID.
func paramID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid "+name, "")
		return primitive.NilObjectID, false
	}
	return id, true
}

// mustActor returns the authenticated caller or writes a 401.
func mustActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middlewares.CurrentActor(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "Authentication required", "")
		return services.Actor{}, false
	}
	return actor, true
}

// mustID parses an id that has already passed the objectid binding tag.
func mustID(c *gin.Context, hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid id", "")
		return primitive.NilObjectID, false
	}
	return id, true
}

// optionalID parses hex when present.
func optionalID(c *gin.Context, hex string) (*primitive.ObjectID, bool) {
	id, err := dto.ParseOptionalID(hex)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid id", "")
		return nil, false
	}
	return id, true
}
