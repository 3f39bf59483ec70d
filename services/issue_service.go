package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"civictrack-be/dto"
	"civictrack-be/models"
	"civictrack-be/repositories"
)

type IssueService interface {
	Create(ctx context.Context, reporterID primitive.ObjectID, req *dto.CreateIssueRequest) (*dto.IssueView, error)
	List(ctx context.Context, filter repositories.IssueFilter, opts repositories.ListOptions) ([]dto.IssueView, int64, error)
	Mine(ctx context.Context, userID primitive.ObjectID, opts repositories.ListOptions) ([]dto.IssueView, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*dto.IssueView, error)
	UpdateStatus(ctx context.Context, actor Actor, id primitive.ObjectID, status models.IssueStatus) (*dto.IssueView, error)
	UpdateHandledBy(ctx context.Context, actor Actor, id primitive.ObjectID, handledBy string) (*dto.IssueView, error)
	SetDepartment(ctx context.Context, actor Actor, id, departmentID primitive.ObjectID) (*dto.IssueView, error)
	AddFeedback(ctx context.Context, actor Actor, id primitive.ObjectID, req *dto.FeedbackRequest) (*dto.IssueView, error)
	Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error
	Statistics(ctx context.Context, filter repositories.IssueFilter) (*dto.IssueStatistics, error)
}

type issueService struct {
	repo   *repositories.Repository
	opts   Options
	text   *textSanitizer
	logger *zap.Logger
}

func NewIssueService(repo *repositories.Repository, opts Options, text *textSanitizer, logger *zap.Logger) IssueService {
	opts.defaults()
	if text == nil {
		text = newTextSanitizer()
	}
	return &issueService{repo: repo, opts: opts, text: text, logger: logger}
}

func (s *issueService) Create(ctx context.Context, reporterID primitive.ObjectID, req *dto.CreateIssueRequest) (*dto.IssueView, error) {
	details, err := s.repo.UserDetails.GetByUserID(ctx, reporterID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		s.logger.Error("failed to load user details", zap.String("user_id", reporterID.Hex()), zap.Error(err))
		return nil, Internal("Failed to create issue", err)
	}
	if !details.Complete() {
		return nil, reason(http.StatusBadRequest, ErrProfileIncomplete)
	}
	if err := ValidateHierarchy(ctx, s.repo, details.ConstituencyID, details.PanchayatID, details.WardNo); err != nil {
		return nil, err
	}

	issue := &models.Issue{
		Title:          s.text.Clean(req.Title),
		Detail:         s.text.Clean(req.Detail),
		Locality:       s.text.Clean(req.Locality),
		ReportedBy:     reporterID,
		ConstituencyID: details.ConstituencyID,
		PanchayatID:    details.PanchayatID,
		WardNo:         details.WardNo,
		Status:         models.StatusPending,
		Priority:       models.Priorities[s.opts.RandIntN(len(models.Priorities))],
		IsAnonymous:    req.IsAnonymous,
		Attachment:     strings.TrimSpace(req.Attachment),
		UpvotedBy:      []primitive.ObjectID{},
		CreatedAt:      s.opts.Now(),
	}
	if issue.Title == "" || issue.Detail == "" || issue.Locality == "" {
		return nil, BadRequest("Title, detail and locality cannot be empty")
	}

	var note string
	if req.DepartmentID != "" {
		deptID, err := parseID(req.DepartmentID, "department")
		if err != nil {
			return nil, err
		}
		if _, err := s.repo.Departments.GetByID(ctx, deptID); err != nil {
			return nil, notFoundOr(err, "department")
		}
		issue.DepartmentID = &deptID
	} else {
		issue.DepartmentID, note = s.classify(ctx, issue)
	}

	if err := s.repo.Issues.Create(ctx, issue); err != nil {
		s.logger.Error("failed to create issue", zap.String("user_id", reporterID.Hex()), zap.Error(err))
		return nil, Internal("Failed to create issue", err)
	}

	views := s.populate(ctx, []models.Issue{*issue})
	views[0].Classification = note
	return &views[0], nil
}

// classify never fails the request: on any problem the issue keeps no
// department and the reason is returned as a note.
func (s *issueService) classify(ctx context.Context, issue *models.Issue) (*primitive.ObjectID, string) {
	switch r := s.opts.Classifier.Classify(ctx, issue.Title, issue.Detail).(type) {
	case Classified:
		dept, err := s.repo.Departments.GetByName(ctx, r.Department)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				s.logger.Warn("failed to look up classified department", zap.String("department", r.Department), zap.Error(err))
			}
			return nil, "classified as " + r.Department + " but no such department exists"
		}
		return &dept.ID, "classified as " + dept.Name
	case Unavailable:
		return nil, "classification unavailable: " + r.Reason
	}
	return nil, "classification unavailable"
}

func (s *issueService) List(ctx context.Context, filter repositories.IssueFilter, opts repositories.ListOptions) ([]dto.IssueView, int64, error) {
	issues, total, err := s.repo.Issues.List(ctx, filter, opts)
	if err != nil {
		s.logger.Error("failed to list issues", zap.Error(err))
		return nil, 0, Internal("Failed to list issues", err)
	}
	return s.populate(ctx, issues), total, nil
}

func (s *issueService) Mine(ctx context.Context, userID primitive.ObjectID, opts repositories.ListOptions) ([]dto.IssueView, int64, error) {
	return s.List(ctx, repositories.IssueFilter{ReportedBy: &userID}, opts)
}

func (s *issueService) Get(ctx context.Context, id primitive.ObjectID) (*dto.IssueView, error) {
	issue, err := s.repo.Issues.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "issue")
	}
	views := s.populate(ctx, []models.Issue{*issue})
	return &views[0], nil
}

func (s *issueService) UpdateStatus(ctx context.Context, actor Actor, id primitive.ObjectID, status models.IssueStatus) (*dto.IssueView, error) {
	if !models.ValidStatus(string(status)) {
		return nil, BadRequest("Invalid status")
	}

	issue, err := s.repo.Issues.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "issue")
	}
	if !canActOn(actor, issue.ReportedBy) {
		return nil, Forbidden("Only the reporter or an admin can update the status")
	}

	var completedAt = issue.CompletedAt
	if status == models.StatusResolved {
		now := s.opts.Now()
		completedAt = &now
	}
	if err := s.repo.Issues.UpdateStatus(ctx, id, status, completedAt); err != nil {
		return nil, s.updateFailed(err, id, "status")
	}
	return s.Get(ctx, id)
}

func (s *issueService) UpdateHandledBy(ctx context.Context, actor Actor, id primitive.ObjectID, handledBy string) (*dto.IssueView, error) {
	if !actor.Role.CanAssignIssues() {
		return nil, Forbidden("Only department heads or admins can assign issues")
	}
	handledBy = strings.TrimSpace(handledBy)
	if handledBy == "" {
		return nil, BadRequest("handled_by is required")
	}

	if _, err := s.repo.Issues.GetByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "issue")
	}

	var employeeID *primitive.ObjectID
	label := s.text.Clean(handledBy)
	if oid, err := primitive.ObjectIDFromHex(handledBy); err == nil {
		employee, err := s.repo.DepartmentEmployees.GetByID(ctx, oid)
		switch {
		case err == nil:
			employeeID, label = &employee.ID, ""
		case !errors.Is(err, repositories.ErrNotFound):
			s.logger.Error("failed to load department employee", zap.String("id", oid.Hex()), zap.Error(err))
			return nil, Internal("Failed to assign issue", err)
		}
	}

	if err := s.repo.Issues.SetHandledBy(ctx, id, employeeID, label); err != nil {
		return nil, s.updateFailed(err, id, "handled_by")
	}
	return s.Get(ctx, id)
}

func (s *issueService) SetDepartment(ctx context.Context, actor Actor, id, departmentID primitive.ObjectID) (*dto.IssueView, error) {
	if !actor.Role.CanAssignIssues() {
		return nil, Forbidden("Only department heads or admins can route issues")
	}
	if _, err := s.repo.Issues.GetByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "issue")
	}
	if _, err := s.repo.Departments.GetByID(ctx, departmentID); err != nil {
		return nil, notFoundOr(err, "department")
	}

	if err := s.repo.Issues.SetDepartment(ctx, id, departmentID); err != nil {
		return nil, s.updateFailed(err, id, "department")
	}
	return s.Get(ctx, id)
}

func (s *issueService) AddFeedback(ctx context.Context, actor Actor, id primitive.ObjectID, req *dto.FeedbackRequest) (*dto.IssueView, error) {
	satisfaction := models.Satisfaction(req.Satisfaction)
	if _, ok := satisfaction.Score(); !ok {
		return nil, BadRequest("satisfaction must be one of good, average, poor")
	}

	issue, err := s.repo.Issues.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "issue")
	}
	if !canActOn(actor, issue.ReportedBy) {
		return nil, Forbidden("Only the reporter or an admin can add feedback")
	}
	if issue.Status != models.StatusResolved {
		return nil, reason(http.StatusBadRequest, ErrFeedbackNotReady)
	}

	feedback := s.text.Clean(req.Feedback)
	if err := s.repo.Issues.SetFeedback(ctx, id, feedback, satisfaction); err != nil {
		return nil, s.updateFailed(err, id, "feedback")
	}
	return s.Get(ctx, id)
}

func (s *issueService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	issue, err := s.repo.Issues.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "issue")
	}
	if !canActOn(actor, issue.ReportedBy) {
		return Forbidden("Only the reporter or an admin can delete this issue")
	}
	if err := s.repo.Issues.Delete(ctx, id); err != nil {
		return notFoundOr(err, "issue")
	}
	return nil
}

func (s *issueService) Statistics(ctx context.Context, filter repositories.IssueFilter) (*dto.IssueStatistics, error) {
	statusCounts := make([]int64, len(models.IssueStatuses))
	priorityCounts := make([]int64, len(models.Priorities))
	var total int64
	var grouped map[models.Priority]int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.repo.Issues.Count(gctx, filter)
		return err
	})
	for i, status := range models.IssueStatuses {
		i := i
		f := filter
		f.Status = status
		g.Go(func() (err error) {
			statusCounts[i], err = s.repo.Issues.Count(gctx, f)
			return err
		})
	}
	for i, priority := range models.Priorities {
		i := i
		f := filter
		f.Priority = priority
		g.Go(func() (err error) {
			priorityCounts[i], err = s.repo.Issues.Count(gctx, f)
			return err
		})
	}
	g.Go(func() (err error) {
		grouped, err = s.repo.Issues.CountByPriority(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to compute issue statistics", zap.Error(err))
		return nil, Internal("Failed to compute issue statistics", err)
	}

	stats := &dto.IssueStatistics{
		Total:          total,
		ByStatus:       make(map[string]int64, len(models.IssueStatuses)),
		ByPriority:     make(map[string]int64, len(models.Priorities)),
		PriorityGroups: make([]dto.PriorityCount, 0, len(models.Priorities)),
	}
	for i, status := range models.IssueStatuses {
		stats.ByStatus[string(status)] = statusCounts[i]
	}
	for i, priority := range models.Priorities {
		stats.ByPriority[string(priority)] = priorityCounts[i]
		if n := grouped[priority]; n > 0 {
			stats.PriorityGroups = append(stats.PriorityGroups, dto.PriorityCount{Priority: priority, Count: n})
		}
	}
	return stats, nil
}

func (s *issueService) updateFailed(err error, id primitive.ObjectID, field string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("Issue not found")
	}
	s.logger.Error("failed to update issue", zap.String("id", id.Hex()), zap.String("field", field), zap.Error(err))
	return Internal("Failed to update issue", err)
}

// populate resolves the references of issues in batches. Lookup failures
// leave the reference unpopulated.
func (s *issueService) populate(ctx context.Context, issues []models.Issue) []dto.IssueView {
	views := make([]dto.IssueView, len(issues))
	if len(issues) == 0 {
		return views
	}

	var userIDs, deptIDs []primitive.ObjectID
	employees := map[primitive.ObjectID]*models.DepartmentEmployee{}
	for _, issue := range issues {
		if !issue.IsAnonymous {
			userIDs = append(userIDs, issue.ReportedBy)
		}
		if issue.DepartmentID != nil {
			deptIDs = append(deptIDs, *issue.DepartmentID)
		}
		if issue.HandledBy != nil {
			if _, seen := employees[*issue.HandledBy]; seen {
				continue
			}
			employee, err := s.repo.DepartmentEmployees.GetByID(ctx, *issue.HandledBy)
			if err != nil {
				employees[*issue.HandledBy] = nil
				continue
			}
			employees[*issue.HandledBy] = employee
			userIDs = append(userIDs, employee.UserID)
		}
	}

	users := map[primitive.ObjectID]*models.User{}
	if len(userIDs) > 0 {
		list, err := s.repo.Users.GetByIDs(ctx, userIDs)
		if err != nil {
			s.logger.Warn("failed to populate users", zap.Error(err))
		}
		for i := range list {
			users[list[i].ID] = &list[i]
		}
	}

	departments := map[primitive.ObjectID]*dto.RefSummary{}
	if len(deptIDs) > 0 {
		list, err := s.repo.Departments.GetByIDs(ctx, deptIDs)
		if err != nil {
			s.logger.Warn("failed to populate departments", zap.Error(err))
		}
		for _, d := range list {
			departments[d.ID] = &dto.RefSummary{ID: d.ID, Name: d.Name}
		}
	}

	constituencies := map[primitive.ObjectID]*dto.RefSummary{}
	panchayats := map[primitive.ObjectID]*dto.RefSummary{}
	for i, issue := range issues {
		view := dto.NewIssueView(issue)
		if !issue.IsAnonymous {
			view.Reporter = dto.NewUserSummary(users[issue.ReportedBy])
		}
		if issue.DepartmentID != nil {
			view.Department = departments[*issue.DepartmentID]
		}
		if issue.HandledBy != nil {
			if employee := employees[*issue.HandledBy]; employee != nil {
				view.Handler = dto.NewUserSummary(users[employee.UserID])
			}
		}

		ref, ok := constituencies[issue.ConstituencyID]
		if !ok {
			if c, err := s.repo.Constituencies.GetByID(ctx, issue.ConstituencyID); err == nil {
				ref = &dto.RefSummary{ID: c.ID, Name: c.Name, Code: c.Code}
			}
			constituencies[issue.ConstituencyID] = ref
		}
		view.Constituency = ref

		ref, ok = panchayats[issue.PanchayatID]
		if !ok {
			if p, err := s.repo.Panchayats.GetByID(ctx, issue.PanchayatID); err == nil {
				ref = &dto.RefSummary{ID: p.ID, Name: p.Name, Code: p.Code}
			}
			panchayats[issue.PanchayatID] = ref
		}
		view.Panchayat = ref

		views[i] = view
	}
	return views
}
