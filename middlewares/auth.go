package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/models"
	"civictrack-be/repositories"
	"civictrack-be/services"
	"civictrack-be/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "userId"
	ContextEmail  = "email"
	ContextRole   = "role"
	contextUser   = "user"
)

// AuthCookie carries the token for browser clients that do not send a header.
const AuthCookie = "auth_token"

// AuthMiddleware accepts a bearer token from the Authorization header, or the
// auth cookie when the header is absent, and loads the current user so role
// changes apply without a new token.
func AuthMiddleware(tokens *utils.TokenManager, users repositories.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.Abort(c, http.StatusUnauthorized, "No authorization token provided")
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				utils.Abort(c, http.StatusUnauthorized, "Token has expired")
				return
			}
			logger.Debug("token validation failed", zap.Error(err))
			utils.Abort(c, http.StatusUnauthorized, "Invalid authorization token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.Abort(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				utils.Abort(c, http.StatusUnauthorized, "User no longer exists")
				return
			}
			logger.Error("failed to load authenticated user", zap.String("user_id", claims.UserID), zap.Error(err))
			utils.Abort(c, http.StatusInternalServerError, "Something went wrong")
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return header
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie
	}
	return ""
}

// SetCurrentUser stores the authenticated user on the request context.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(ContextUserID, user.ID.Hex())
	c.Set(ContextEmail, user.Email)
	c.Set(ContextRole, user.Role)
	c.Set(contextUser, user)
}

// CurrentActor returns the authenticated caller set by AuthMiddleware.
func CurrentActor(c *gin.Context) (services.Actor, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{ID: user.ID, Role: user.Role}, true
}

// CurrentUser returns the user loaded by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(contextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// RequireRole lets the request through when allowed accepts the caller's role.
func RequireRole(allowed func(models.Role) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			utils.Abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !allowed(actor.Role) {
			utils.Abort(c, http.StatusForbidden, message)
			return
		}
		c.Next()
	}
}

// RequirePrivileged admits admins and department heads.
func RequirePrivileged() gin.HandlerFunc {
	return RequireRole(models.Role.CanModerate, "Access denied. Admin or department privileges required")
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.Role.IsAdmin, "Access denied. Admin privileges required")
}

// RequireMLA admits MLA staff and admins.
func RequireMLA() gin.HandlerFunc {
	return RequireRole(models.Role.CanViewConstituencyReports, "Access denied. MLA privileges required")
}
