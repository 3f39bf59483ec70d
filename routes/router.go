// Package routes mounts every API endpoint on a gin engine.
package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"civictrack-be/config"
	"civictrack-be/controllers"
	_ "civictrack-be/docs"
	"civictrack-be/middlewares"
	"civictrack-be/repositories"
	"civictrack-be/storage"
	"civictrack-be/utils"
)

// maxBodyBytes leaves room for multipart framing around an attachment.
const maxBodyBytes = storage.MaxUploadSize + 1<<20

// Deps is everything the router wires together.
type Deps struct {
	Config     *config.Config
	Controller *controllers.Controller
	Tokens     *utils.TokenManager
	Users      repositories.UserRepository
	// Redis is nil when rate limiting is disabled.
	Redis  *redis.Client
	Logger *zap.Logger
}

// guards holds the middleware chains shared by the route files.
type guards struct {
	auth       gin.HandlerFunc
	privileged gin.HandlerFunc
	admin      gin.HandlerFunc
	mla        gin.HandlerFunc
	issueLimit gin.HandlerFunc
}

func Setup(d Deps) *gin.Engine {
	if d.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.Logger(d.Logger))
	r.Use(cors.New(corsConfig(d.Config.CORSOrigins)))
	r.Use(middlewares.BodyLimit(maxBodyBytes))
	r.MaxMultipartMemory = storage.MaxUploadSize

	r.GET("/health", d.Controller.Health.Health)
	r.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	g := guards{
		auth:       middlewares.AuthMiddleware(d.Tokens, d.Users, d.Logger),
		privileged: middlewares.RequirePrivileged(),
		admin:      middlewares.RequireAdmin(),
		mla:        middlewares.RequireMLA(),
		issueLimit: middlewares.IssueRateLimiter(d.Redis, d.Config.Redis.IssueLimitQueue, d.Config.Redis.IssueDailyLimit, d.Logger),
	}

	api := r.Group("/api")
	AuthRoutes(api, d.Controller.Auth, g)
	ConstituencyRoutes(api, d.Controller.Constituencies, g)
	PanchayatRoutes(api, d.Controller.Panchayats, g)
	IssueRoutes(api, d.Controller.Issues, g)
	UpvoteRoutes(api, d.Controller.Upvotes, g)
	DepartmentRoutes(api, d.Controller.Departments, g)
	SuggestionRoutes(api, d.Controller.Suggestions, g)
	DashboardRoutes(api, d.Controller.Dashboard, g)

	return r
}

// corsConfig allows credentials only for an explicit origin list; browsers
// reject credentialed requests against a wildcard.
func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", middlewares.RequestIDHeader)
	cfg.ExposeHeaders = []string{middlewares.RequestIDHeader, "Retry-After"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
