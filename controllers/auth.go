package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/middlewares"
	"civictrack-be/services"
	"civictrack-be/utils"
)

// CookieSettings scopes the auth cookie set on login.
type CookieSettings struct {
	Domain     string
	Production bool
	TTL        time.Duration
}

func (s CookieSettings) write(c *gin.Context, value string, maxAge int) {
	domain := s.Domain
	// cross-origin cookies in production must not pin a domain
	if s.Production {
		domain = ""
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.AuthCookie,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Domain:   domain,
		Secure:   s.Production,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

type AuthController struct {
	auth   services.AuthService
	cookie CookieSettings
	logger *zap.Logger
}

func NewAuthController(auth services.AuthService, cookie CookieSettings, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, cookie: cookie, logger: logger}
}

// Signup registers a citizen.
//
//	@Summary	Register a citizen account
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		dto.SignupRequest	true	"Signup data"
//	@Success	201		{object}	utils.Response
//	@Failure	400		{object}	utils.Response
//	@Failure	409		{object}	utils.Response
//	@Router		/auth/signup [post]
func (h *AuthController) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.setCookie(c, res.Token)
	utils.Created(c, "User registered successfully", res)
}

// Login authenticates with email and password.
//
//	@Summary	Log in with email and password
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		dto.LoginRequest	true	"Credentials"
//	@Success	200		{object}	utils.Response
//	@Failure	401		{object}	utils.Response
//	@Failure	404		{object}	utils.Response
//	@Router		/auth/login [post]
func (h *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.LoginWithEmail(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.setCookie(c, res.Token)
	utils.OK(c, "Login successful", res)
}

// GoogleLogin authenticates with a Google OAuth access token.
//
//	@Summary	Log in with Google
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		dto.GoogleLoginRequest	true	"Google access token"
//	@Success	200		{object}	utils.Response
//	@Failure	401		{object}	utils.Response
//	@Router		/auth/google [post]
func (h *AuthController) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.LoginWithGoogle(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.setCookie(c, res.Token)
	utils.OK(c, "Login successful", res)
}

// Logout godoc
//
//	@Summary	Log out
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	utils.Response
//	@Router		/auth/logout [post]
func (h *AuthController) Logout(c *gin.Context) {
	h.cookie.write(c, "", -1)
	utils.OK(c, "Logged out successfully", nil)
}

// Me godoc
//
//	@Summary	Current user and profile details
//	@Tags		auth
//	@Produce	json
//	@Security	Bearer
//	@Success	200	{object}	utils.Response
//	@Router		/auth/me [get]
func (h *AuthController) Me(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	profile, err := h.auth.Me(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Profile retrieved", profile)
}

// ChangePassword godoc
//
//	@Summary	Change password
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		body	body		dto.ChangePasswordRequest	true	"Passwords"
//	@Success	200		{object}	utils.Response
//	@Failure	401		{object}	utils.Response
//	@Router		/auth/change-password [put]
func (h *AuthController) ChangePassword(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), actor.ID, &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Password changed successfully", nil)
}

// UpdateDetails sets the caller's constituency, panchayat and ward.
//
//	@Summary	Update hierarchy details
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		body	body		dto.UpdateDetailsRequest	true	"Hierarchy placement"
//	@Success	200		{object}	utils.Response
//	@Failure	400		{object}	utils.Response
//	@Router		/auth/details [put]
func (h *AuthController) UpdateDetails(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req dto.UpdateDetailsRequest
	if !bindJSON(c, &req) {
		return
	}

	details, err := h.auth.UpdateDetails(c.Request.Context(), actor.ID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Details updated successfully", details)
}

// AssignRole godoc
//
//	@Summary	Assign a role to a user
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Param		id		path		string					true	"User id"
//	@Param		body	body		dto.AssignRoleRequest	true	"Role"
//	@Success	200		{object}	utils.Response
//	@Failure	404		{object}	utils.Response
//	@Router		/auth/users/{id}/role [put]
func (h *AuthController) AssignRole(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.AssignRole(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.OK(c, "Role updated successfully", user)
}

func (h *AuthController) setCookie(c *gin.Context, token string) {
	h.cookie.write(c, token, int(h.cookie.TTL.Seconds()))
}
