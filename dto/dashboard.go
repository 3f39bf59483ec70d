package dto

import "go.mongodb.org/mongo-driver/bson/primitive"

type DashboardQuery struct {
	ConstituencyID string `form:"constituency_id" binding:"omitempty,objectid"`
}

type DepartmentMetrics struct {
	DepartmentID      *primitive.ObjectID `json:"department_id,omitempty"`
	Name              string              `json:"name"`
	Total             int                 `json:"total"`
	Pending           int                 `json:"pending"`
	InProgress        int                 `json:"in_progress"`
	Resolved          int                 `json:"resolved"`
	Rejected          int                 `json:"rejected"`
	AvgResolutionDays float64             `json:"avg_resolution_days"`
	AvgSatisfaction   float64             `json:"avg_satisfaction"`
}

type MonthlyMetrics struct {
	Month           string  `json:"month"`
	Total           int     `json:"total"`
	Resolved        int     `json:"resolved"`
	AvgSatisfaction float64 `json:"avg_satisfaction"`
}

// Share is one slice of a distribution; Percentage is rounded to one decimal.
type Share struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Dashboard struct {
	Constituency    RefSummary          `json:"constituency"`
	TotalPanchayats int                 `json:"total_panchayats"`
	TotalWards      int                 `json:"total_wards"`
	TotalIssues     int                 `json:"total_issues"`
	ResolvedIssues  int                 `json:"resolved_issues"`
	Departments     []DepartmentMetrics `json:"departments"`
	Monthly         []MonthlyMetrics    `json:"monthly"`
	Categories      []Share             `json:"categories"`
	Priorities      []Share             `json:"priorities"`
	RecentIssues    []IssueView         `json:"recent_issues"`
}
