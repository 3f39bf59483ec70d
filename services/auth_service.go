package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/dto"
	"civictrack-be/models"
	"civictrack-be/repositories"
	"civictrack-be/utils"
)

type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	LoginWithEmail(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	LoginWithGoogle(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.AuthResponse, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, req *dto.ChangePasswordRequest) error
	Me(ctx context.Context, userID primitive.ObjectID) (*dto.ProfileResponse, error)
	UpdateDetails(ctx context.Context, userID primitive.ObjectID, req *dto.UpdateDetailsRequest) (*models.UserDetails, error)
	AssignRole(ctx context.Context, userID primitive.ObjectID, req *dto.AssignRoleRequest) (*models.User, error)
}

type authService struct {
	repo   *repositories.Repository
	tokens *utils.TokenManager
	google GoogleVerifier
	logger *zap.Logger
}

func NewAuthService(repo *repositories.Repository, tokens *utils.TokenManager, google GoogleVerifier, logger *zap.Logger) AuthService {
	return &authService{repo: repo, tokens: tokens, google: google, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.repo.Users.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to check existing user", zap.String("email", email), zap.Error(err))
		return nil, Internal("Something went wrong", err)
	}
	if exists {
		return nil, Conflict("User with this email already exists")
	}

	constituencyID, err := parseID(req.ConstituencyID, "constituency")
	if err != nil {
		return nil, err
	}
	panchayatID, err := parseID(req.PanchayatID, "panchayat")
	if err != nil {
		return nil, err
	}
	wardNo := strings.TrimSpace(req.WardNo)
	if err := ValidateHierarchy(ctx, s.repo, constituencyID, panchayatID, wardNo); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Password:    req.Password,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Role:        models.RoleCitizen,
	}
	if err := user.HashPassword(); err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, Internal("Something went wrong", err)
	}

	if err := s.repo.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, Conflict("User with this email already exists")
		}
		s.logger.Error("failed to insert user", zap.String("email", email), zap.Error(err))
		return nil, Internal("Something went wrong", err)
	}

	details := &models.UserDetails{
		UserID:         user.ID,
		ConstituencyID: constituencyID,
		PanchayatID:    panchayatID,
		WardNo:         wardNo,
	}
	if err := s.repo.UserDetails.Create(ctx, details); err != nil {
		s.logger.Error("failed to insert user details", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		// the email stays free for a retry
		if delErr := s.repo.Users.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			s.logger.Error("orphaned user left after failed signup", zap.String("user_id", user.ID.Hex()), zap.Error(delErr))
		}
		return nil, Internal("Something went wrong", err)
	}

	return s.issue(user, "")
}

func (s *authService) LoginWithEmail(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.Users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFound("User not found")
		}
		s.logger.Error("failed to load user", zap.Error(err))
		return nil, Internal("Something went wrong", err)
	}

	if !user.ComparePassword(req.Password) {
		return nil, Unauthorized("Invalid credentials")
	}
	return s.issue(user, "")
}

func (s *authService) LoginWithGoogle(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.AuthResponse, error) {
	if s.google == nil {
		return nil, Unauthorized("Google sign-in is not configured")
	}

	profile, err := s.google.Verify(ctx, req.AccessToken)
	if err != nil {
		s.logger.Warn("google token verification failed", zap.Error(err))
		return nil, Unauthorized("Invalid Google access token")
	}
	email := normalizeEmail(req.Email)
	if normalizeEmail(profile.Email) != email {
		return nil, Unauthorized("Google account does not match the given email")
	}

	user, err := s.repo.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFound("No account is registered with this email")
		}
		s.logger.Error("failed to load user", zap.Error(err))
		return nil, Internal("Something went wrong", err)
	}

	if err := s.repo.Users.UpdateAccessToken(ctx, user.ID, req.AccessToken); err != nil {
		s.logger.Error("failed to store access token", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		return nil, Internal("Something went wrong", err)
	}
	if profile.EmailVerified && !user.IsVerified {
		if err := s.repo.Users.MarkVerified(ctx, user.ID); err != nil {
			s.logger.Warn("failed to mark user verified", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		} else {
			user.IsVerified = true
		}
	}

	return s.issue(user, req.AccessToken)
}

func (s *authService) ChangePassword(ctx context.Context, userID primitive.ObjectID, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.Users.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user")
	}
	if !user.ComparePassword(req.CurrentPassword) {
		return Unauthorized("Current password is incorrect")
	}

	user.Password = req.NewPassword
	if err := user.HashPassword(); err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return Internal("Something went wrong", err)
	}
	if err := s.repo.Users.UpdatePassword(ctx, userID, user.Password); err != nil {
		s.logger.Error("failed to update password", zap.String("user_id", userID.Hex()), zap.Error(err))
		return Internal("Something went wrong", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*dto.ProfileResponse, error) {
	user, err := s.repo.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}

	details, err := s.repo.UserDetails.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		s.logger.Error("failed to load user details", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, Internal("Something went wrong", err)
	}
	return &dto.ProfileResponse{User: user, Details: details}, nil
}

func (s *authService) UpdateDetails(ctx context.Context, userID primitive.ObjectID, req *dto.UpdateDetailsRequest) (*models.UserDetails, error) {
	constituencyID, err := parseID(req.ConstituencyID, "constituency")
	if err != nil {
		return nil, err
	}
	panchayatID, err := parseID(req.PanchayatID, "panchayat")
	if err != nil {
		return nil, err
	}
	wardNo := strings.TrimSpace(req.WardNo)
	if err := ValidateHierarchy(ctx, s.repo, constituencyID, panchayatID, wardNo); err != nil {
		return nil, err
	}

	details := &models.UserDetails{
		UserID:         userID,
		ConstituencyID: constituencyID,
		PanchayatID:    panchayatID,
		WardNo:         wardNo,
	}
	if err := s.repo.UserDetails.Upsert(ctx, details); err != nil {
		s.logger.Error("failed to upsert user details", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, Internal("Something went wrong", err)
	}
	return details, nil
}

func (s *authService) AssignRole(ctx context.Context, userID primitive.ObjectID, req *dto.AssignRoleRequest) (*models.User, error) {
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, BadRequest("Invalid role")
	}

	user, err := s.repo.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	if err := s.repo.Users.UpdateRole(ctx, userID, role); err != nil {
		s.logger.Error("failed to update role", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, Internal("Something went wrong", err)
	}

	s.logger.Info("role assigned", zap.String("user_id", userID.Hex()), zap.String("role", role.String()))
	user.Role = role
	return user, nil
}

func (s *authService) issue(user *models.User, accessToken string) (*dto.AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID.Hex(), user.Email, user.Role.String(), accessToken)
	if err != nil {
		s.logger.Error("failed to generate token", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		return nil, Internal("Something went wrong", err)
	}
	return &dto.AuthResponse{Token: token, User: user}, nil
}
