package dto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
)

type CreateConstituencyRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Code  string `json:"code" binding:"required,max=50"`
	MLAID string `json:"mla_id" binding:"omitempty,objectid"`
}

type BulkConstituencyRequest struct {
	Constituencies []CreateConstituencyRequest `json:"constituencies" binding:"required,min=1,max=500"`
}

// UpdateConstituencyRequest changes only the fields that are present.
// An empty mla_id unassigns the MLA.
type UpdateConstituencyRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Code  *string `json:"code" binding:"omitempty,min=1,max=50"`
	MLAID *string `json:"mla_id"`
}

// ConstituencyInfo is a constituency with its derived statistics.
type ConstituencyInfo struct {
	Constituency   *models.Constituency `json:"constituency"`
	MLA            *UserSummary         `json:"mla,omitempty"`
	TotalVoters    int64                `json:"total_voters"`
	ActiveVoters   int64                `json:"active_voters"`
	PanchayatCount int                  `json:"panchayat_count"`
	WardCount      int                  `json:"ward_count"`
}

type CreatePanchayatRequest struct {
	Name           string        `json:"name" binding:"required,max=100"`
	Code           string        `json:"code" binding:"required,max=50"`
	ConstituencyID string        `json:"constituency_id" binding:"required,objectid"`
	WardList       []models.Ward `json:"ward_list" binding:"required,min=1,dive"`
}

type BulkPanchayatRequest struct {
	Panchayats []CreatePanchayatRequest `json:"panchayats" binding:"required,min=1,max=500"`
}

type UpdatePanchayatRequest struct {
	Name     *string       `json:"name" binding:"omitempty,min=1,max=100"`
	Code     *string       `json:"code" binding:"omitempty,min=1,max=50"`
	WardList []models.Ward `json:"ward_list" binding:"omitempty,min=1,dive"`
}

type AddWardsRequest struct {
	Wards []models.Ward `json:"wards" binding:"required,min=1,dive"`
}

type PanchayatQuery struct {
	ConstituencyID string `form:"constituency_id" binding:"omitempty,objectid"`
}

type PanchayatView struct {
	models.Panchayat
	Constituency *RefSummary `json:"constituency,omitempty"`
}

// ParseOptionalID parses s when it is non-empty.
func ParseOptionalID(s string) (*primitive.ObjectID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
