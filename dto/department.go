package dto

import "civictrack-be/models"

type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	HeadID      string `json:"head_id" binding:"required,objectid"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

type UpdateDepartmentRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	HeadID      *string `json:"head_id" binding:"omitempty,objectid"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type AddEmployeeRequest struct {
	UserID string `json:"user_id" binding:"required,objectid"`
}

type DepartmentView struct {
	models.Department
	Head *UserSummary `json:"head,omitempty"`
}

type EmployeeView struct {
	models.DepartmentEmployee
	User *UserSummary `json:"user,omitempty"`
}
