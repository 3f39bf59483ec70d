// Package dto holds the request and response shapes of the HTTP API.
package dto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
)

// UserSummary is the public view of a referenced user.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Role  models.Role        `json:"role"`
}

func NewUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// RefSummary is the populated form of a constituency, panchayat or department reference.
type RefSummary struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
	Code string             `json:"code,omitempty"`
}

// BulkError reports why one item of a bulk request was rejected.
type BulkError struct {
	Index   int    `json:"index"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// BulkResult is returned by bulk-create endpoints. Items succeed or fail independently.
type BulkResult[T any] struct {
	Created []T         `json:"created"`
	Errors  []BulkError `json:"errors"`
}

// ListQuery carries the paging parameters shared by list endpoints.
type ListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search" binding:"omitempty,max=100"`
}
