package dto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
)

type SuggestionQuery struct {
	Month string `form:"month" binding:"omitempty,len=7"`
	MLAID string `form:"mla_id" binding:"omitempty,objectid"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=24"`
}

type GenerateSuggestionsRequest struct {
	Month string `json:"month" binding:"omitempty,len=7"`
	MLAID string `json:"mla_id" binding:"omitempty,objectid"`
}

type CleanupSuggestionsRequest struct {
	CutoffMonth string `json:"cutoff_month" binding:"required,len=7"`
}

type CleanupResponse struct {
	CutoffMonth string `json:"cutoff_month"`
	Updated     int64  `json:"updated"`
}

// IssueBucket aggregates one month of issues sharing a department and locality.
type IssueBucket struct {
	DepartmentID   *primitive.ObjectID `json:"department_id,omitempty"`
	Locality       string              `json:"locality"`
	IssueCount     int                 `json:"issue_count"`
	AvgUpvotes     int                 `json:"avg_upvotes"`
	ResolutionRate int                 `json:"resolution_rate"`
}

// Metrics converts the bucket into the metrics stored on a suggestion.
func (b IssueBucket) Metrics() models.SuggestionMetrics {
	return models.SuggestionMetrics{
		IssueCount:     b.IssueCount,
		AvgUpvotes:     b.AvgUpvotes,
		ResolutionRate: b.ResolutionRate,
	}
}

type GenerationSummary struct {
	Month     string `json:"month"`
	Generated int    `json:"generated"`
	Failed    int    `json:"failed"`
}
