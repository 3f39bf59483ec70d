package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names.
const (
	UsersCollection               = "users"
	UserDetailsCollection         = "user_details"
	ConstituenciesCollection      = "constituencies"
	PanchayatsCollection          = "panchayats"
	DepartmentsCollection         = "departments"
	DepartmentEmployeesCollection = "department_employees"
	IssuesCollection              = "issues"
	AISuggestionsCollection       = "ai_suggestions"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert or update violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// Repository groups every collection accessor so services take one dependency.
type Repository struct {
	Users               UserRepository
	UserDetails         UserDetailsRepository
	Constituencies      ConstituencyRepository
	Panchayats          PanchayatRepository
	Departments         DepartmentRepository
	DepartmentEmployees DepartmentEmployeeRepository
	Issues              IssueRepository
	AISuggestions       AISuggestionRepository
}

// NewRepository wires MongoDB-backed repositories for db.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		Users:               NewUserRepo(db),
		UserDetails:         NewUserDetailsRepo(db),
		Constituencies:      NewConstituencyRepo(db),
		Panchayats:          NewPanchayatRepo(db),
		Departments:         NewDepartmentRepo(db),
		DepartmentEmployees: NewDepartmentEmployeeRepo(db),
		Issues:              NewIssueRepo(db),
		AISuggestions:       NewAISuggestionRepo(db),
	}
}

// ListOptions pages and sorts list queries. Page is 1-based.
type ListOptions struct {
	Page   int
	Limit  int
	Sort   string
	Search string
}

// Normalize clamps paging values the way every list endpoint expects.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 || o.Limit > 100 {
		o.Limit = 10
	}
	return o
}

// Skip is the number of documents before the requested page.
func (o ListOptions) Skip() int64 {
	return int64((o.Page - 1) * o.Limit)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
