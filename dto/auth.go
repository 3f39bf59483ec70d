package dto

import "civictrack-be/models"

type SignupRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6,max=72"`
	Name           string `json:"name" binding:"required,max=100"`
	PhoneNumber    string `json:"phone_number" binding:"required,max=20"`
	ConstituencyID string `json:"constituency_id" binding:"required,objectid"`
	PanchayatID    string `json:"panchayat_id" binding:"required,objectid"`
	WardNo         string `json:"ward_no" binding:"required,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
}

type UpdateDetailsRequest struct {
	ConstituencyID string `json:"constituency_id" binding:"required,objectid"`
	PanchayatID    string `json:"panchayat_id" binding:"required,objectid"`
	WardNo         string `json:"ward_no" binding:"required,max=50"`
}

type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=citizen mlastaff dept dept_staff admin"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type ProfileResponse struct {
	User    *models.User        `json:"user"`
	Details *models.UserDetails `json:"details,omitempty"`
}
