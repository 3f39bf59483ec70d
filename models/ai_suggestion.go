package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MonthLayout is the storage format of AISuggestion.Month.
const MonthLayout = "2006-01"

// MaxSuggestions caps the suggestions stored in one monthly report.
const MaxSuggestions = 10

type SuggestionMetrics struct {
	IssueCount     int `bson:"issue_count" json:"issue_count"`
	AvgUpvotes     int `bson:"avg_upvotes" json:"avg_upvotes"`
	ResolutionRate int `bson:"resolution_rate" json:"resolution_rate"`
}

type Suggestion struct {
	Title        string              `bson:"title" json:"title"`
	Status       string              `bson:"status" json:"status"`
	Impact       string              `bson:"impact" json:"impact"`
	Description  string              `bson:"description" json:"description"`
	Effort       string              `bson:"estimated_effort" json:"estimated_effort"`
	Cost         string              `bson:"estimated_cost" json:"estimated_cost"`
	DepartmentID *primitive.ObjectID `bson:"department_id,omitempty" json:"department_id,omitempty"`
	Location     string              `bson:"location" json:"location"`
	Metrics      SuggestionMetrics   `bson:"metrics" json:"metrics"`
}

// AISuggestion is the monthly report for one MLA; (MLAID, Month) is unique.
type AISuggestion struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MLAID          primitive.ObjectID `bson:"mla_id" json:"mla_id"`
	ConstituencyID primitive.ObjectID `bson:"constituency_id" json:"constituency_id"`
	Month          string             `bson:"month" json:"month"`
	Suggestions    []Suggestion       `bson:"suggestions" json:"suggestions"`
	GeneratedAt    time.Time          `bson:"generated_at" json:"generated_at"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
