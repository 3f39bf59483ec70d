package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IssueStatus string

const (
	StatusPending    IssueStatus = "pending"
	StatusInProgress IssueStatus = "in_progress"
	StatusResolved   IssueStatus = "resolved"
	StatusRejected   IssueStatus = "rejected"
)

var IssueStatuses = []IssueStatus{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

var Priorities = []Priority{PriorityHigh, PriorityNormal, PriorityLow}

type Satisfaction string

const (
	SatisfactionGood    Satisfaction = "good"
	SatisfactionAverage Satisfaction = "average"
	SatisfactionPoor    Satisfaction = "poor"
)

// Score maps the satisfaction level onto a 1-5 scale.
func (s Satisfaction) Score() (float64, bool) {
	switch s {
	case SatisfactionGood:
		return 5, true
	case SatisfactionAverage:
		return 3, true
	case SatisfactionPoor:
		return 1, true
	}
	return 0, false
}

// Issue is a civic complaint. The hierarchy fields are copied from the
// reporter's UserDetails when the issue is filed.
type Issue struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title          string               `bson:"title" json:"title"`
	Detail         string               `bson:"detail" json:"detail"`
	Locality       string               `bson:"locality" json:"locality"`
	ReportedBy     primitive.ObjectID   `bson:"reported_by" json:"reported_by"`
	ConstituencyID primitive.ObjectID   `bson:"constituency_id" json:"constituency_id"`
	PanchayatID    primitive.ObjectID   `bson:"panchayat_id" json:"panchayat_id"`
	WardNo         string               `bson:"ward_no" json:"ward_no"`
	DepartmentID   *primitive.ObjectID  `bson:"department_id,omitempty" json:"department_id,omitempty"`
	HandledBy      *primitive.ObjectID  `bson:"handled_by,omitempty" json:"handled_by,omitempty"`
	HandledByLabel string               `bson:"handled_by_label,omitempty" json:"handled_by_label,omitempty"`
	Status         IssueStatus          `bson:"status" json:"status"`
	Upvotes        int                  `bson:"upvotes" json:"upvotes"`
	UpvotedBy      []primitive.ObjectID `bson:"upvoted_by" json:"-"`
	Priority       Priority             `bson:"priority" json:"priority"`
	IsAnonymous    bool                 `bson:"is_anonymous" json:"is_anonymous"`
	Attachment     string               `bson:"attachment,omitempty" json:"attachment,omitempty"`
	Feedback       string               `bson:"feedback,omitempty" json:"feedback,omitempty"`
	Satisfaction   Satisfaction         `bson:"satisfaction,omitempty" json:"satisfaction,omitempty"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
	CompletedAt    *time.Time           `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// HasUpvoted reports whether userID is among the issue's voters.
func (i *Issue) HasUpvoted(userID primitive.ObjectID) bool {
	for _, id := range i.UpvotedBy {
		if id == userID {
			return true
		}
	}
	return false
}

func ValidStatus(s string) bool {
	for _, st := range IssueStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}
