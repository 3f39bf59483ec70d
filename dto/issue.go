package dto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/models"
)

type CreateIssueRequest struct {
	Title        string `json:"title" binding:"required,min=3,max=200"`
	Detail       string `json:"detail" binding:"required,max=2000"`
	Locality     string `json:"locality" binding:"required,max=200"`
	DepartmentID string `json:"department_id" binding:"omitempty,objectid"`
	IsAnonymous  bool   `json:"is_anonymous"`
	Attachment   string `json:"attachment" binding:"omitempty,max=500"`
}

type IssueListQuery struct {
	ListQuery
	Status         string `form:"status" binding:"omitempty,oneof=pending in_progress resolved rejected"`
	Priority       string `form:"priority" binding:"omitempty,oneof=high normal low"`
	DepartmentID   string `form:"department_id" binding:"omitempty,objectid"`
	ConstituencyID string `form:"constituency_id" binding:"omitempty,objectid"`
	PanchayatID    string `form:"panchayat_id" binding:"omitempty,objectid"`
	WardNo         string `form:"ward_no" binding:"omitempty,max=50"`
	Sort           string `form:"sort" binding:"omitempty,oneof=newest oldest upvotes"`
}

type StatisticsQuery struct {
	ConstituencyID string `form:"constituency_id" binding:"omitempty,objectid"`
	PanchayatID    string `form:"panchayat_id" binding:"omitempty,objectid"`
	WardNo         string `form:"ward_no" binding:"omitempty,max=50"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_progress resolved rejected"`
}

// UpdateHandledByRequest accepts a department employee id or a free-text label.
type UpdateHandledByRequest struct {
	HandledBy string `json:"handled_by" binding:"required,max=100"`
}

type SetDepartmentRequest struct {
	DepartmentID string `json:"department_id" binding:"required,objectid"`
}

type FeedbackRequest struct {
	Feedback     string `json:"feedback" binding:"required,max=1000"`
	Satisfaction string `json:"satisfaction" binding:"required,oneof=good average poor"`
}

// IssueView is an issue with its references populated. ReportedBy shadows
// the embedded field and stays nil for anonymous issues.
type IssueView struct {
	models.Issue
	ReportedBy     *primitive.ObjectID `json:"reported_by,omitempty"`
	Reporter       *UserSummary        `json:"reporter,omitempty"`
	Constituency   *RefSummary         `json:"constituency,omitempty"`
	Panchayat      *RefSummary         `json:"panchayat,omitempty"`
	Department     *RefSummary         `json:"department,omitempty"`
	Handler        *UserSummary        `json:"handler,omitempty"`
	Classification string              `json:"classification,omitempty"`
}

// NewIssueView wraps an issue without populating its references.
func NewIssueView(issue models.Issue) IssueView {
	view := IssueView{Issue: issue}
	if !issue.IsAnonymous {
		reporter := issue.ReportedBy
		view.ReportedBy = &reporter
	}
	return view
}

type PriorityCount struct {
	Priority models.Priority `json:"priority"`
	Count    int64           `json:"count"`
}

type IssueStatistics struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByPriority     map[string]int64 `json:"by_priority"`
	PriorityGroups []PriorityCount  `json:"priority_groups"`
}

type UpvoteState struct {
	IssueID    primitive.ObjectID `json:"issue_id"`
	Upvotes    int                `json:"upvotes"`
	HasUpvoted bool               `json:"has_upvoted"`
}

type AttachmentResponse struct {
	Attachment  string `json:"attachment"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
