package services

import (
	"html"
	"math/rand"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/models"
	"civictrack-be/repositories"
	"civictrack-be/utils"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   primitive.ObjectID
	Role models.Role
}

// Owns reports whether the actor is the user identified by id.
func (a Actor) Owns(id primitive.ObjectID) bool {
	return a.ID == id
}

// Options carries the collaborators services need beyond the repositories.
// Zero values fall back to production defaults.
type Options struct {
	Tokens     *utils.TokenManager
	Google     GoogleVerifier
	Classifier Classifier
	Location   *time.Location
	Now        func() time.Time
	// RandIntN draws priorities; it must return a value in [0, n).
	RandIntN func(n int) int
}

func (o *Options) defaults() {
	if o.Classifier == nil {
		o.Classifier = disabledClassifier{reason: "classification is not configured"}
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.RandIntN == nil {
		o.RandIntN = rand.Intn
	}
}

// Service groups every domain service so controllers take one dependency.
type Service struct {
	Auth           AuthService
	Constituencies ConstituencyService
	Panchayats     PanchayatService
	Issues         IssueService
	Upvotes        UpvoteService
	Departments    DepartmentService
	Suggestions    SuggestionService
	Dashboard      DashboardService
}

func NewService(repo *repositories.Repository, opts Options, logger *zap.Logger) *Service {
	opts.defaults()
	text := newTextSanitizer()

	return &Service{
		Auth:           NewAuthService(repo, opts.Tokens, opts.Google, logger),
		Constituencies: NewConstituencyService(repo, logger),
		Panchayats:     NewPanchayatService(repo, logger),
		Issues:         NewIssueService(repo, opts, text, logger),
		Upvotes:        NewUpvoteService(repo, logger),
		Departments:    NewDepartmentService(repo, logger),
		Suggestions:    NewSuggestionService(repo, opts, logger),
		Dashboard:      NewDashboardService(repo, opts, logger),
	}
}

// textSanitizer strips markup from user supplied free text.
type textSanitizer struct {
	policy *bluemonday.Policy
}

func newTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *textSanitizer) Clean(in string) string {
	return html.UnescapeString(strings.TrimSpace(s.policy.Sanitize(in)))
}
