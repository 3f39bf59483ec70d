package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wardInput struct {
	WardID   string `json:"ward_id" binding:"required"`
	WardName string `json:"ward_name" binding:"required"`
}

type panchayatInput struct {
	Name           string      `json:"name" binding:"required,max=10"`
	ConstituencyID string      `json:"constituency_id" binding:"required,objectid"`
	WardList       []wardInput `json:"ward_list" binding:"required,min=1,dive"`
}

type signupInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=citizen admin"`
}

func validPanchayat() panchayatInput {
	return panchayatInput{
		Name:           "Kottayam",
		ConstituencyID: "64b7f0c2a1b2c3d4e5f60718",
		WardList:       []wardInput{{WardID: "W1", WardName: "North"}},
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.NoError(t, ValidateStruct(validPanchayat()))
}

func TestValidateStruct_EmptyWardList(t *testing.T) {
	in := validPanchayat()
	in.WardList = []wardInput{}

	err := ValidateStruct(in)
	require.Error(t, err)
	assert.Equal(t, "At least one ward is required", FormatValidationError(err))
}

func TestValidateStruct_MissingWardList(t *testing.T) {
	in := validPanchayat()
	in.WardList = nil

	err := ValidateStruct(in)
	require.Error(t, err)
	assert.Equal(t, "At least one ward is required", FormatValidationError(err))
}

func TestValidateStruct_WardWithoutName(t *testing.T) {
	in := validPanchayat()
	in.WardList = []wardInput{{WardID: "W1"}}

	err := ValidateStruct(in)
	require.Error(t, err)
	assert.Equal(t, "Each ward needs a ward_name", FormatValidationError(err))
}

func TestValidateStruct_ObjectID(t *testing.T) {
	in := validPanchayat()
	in.ConstituencyID = "not-an-id"

	err := ValidateStruct(in)
	require.Error(t, err)
	assert.Equal(t, "constituency_id must be a valid id", FormatValidationError(err))
}

func TestValidateStruct_Messages(t *testing.T) {
	tests := []struct {
		name string
		in   signupInput
		want string
	}{
		{"short password", signupInput{Email: "a@b.com", Password: "12345"}, "Password must be at least 6 characters"},
		{"bad email", signupInput{Email: "nope", Password: "123456"}, "Please provide a valid email address"},
		{"missing email", signupInput{Password: "123456"}, "email is required"},
		{"bad role", signupInput{Email: "a@b.com", Password: "123456", Role: "root"}, "role must be one of citizen, admin"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want, FormatValidationError(err))
		})
	}
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 21, TotalPages: 3}, NewPagination(1, 10, 21))
	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
}
