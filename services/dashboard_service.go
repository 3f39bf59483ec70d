package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"civictrack-be/dto"
	"civictrack-be/models"
	"civictrack-be/repositories"
)

const (
	dashboardMonths = 6
	recentIssues    = 5
	unassignedLabel = "Unassigned"
)

type DashboardService interface {
	// ForMLA builds the dashboard of the constituency mlaID is assigned to.
	ForMLA(ctx context.Context, mlaID primitive.ObjectID) (*dto.Dashboard, error)
	ForConstituency(ctx context.Context, constituencyID primitive.ObjectID) (*dto.Dashboard, error)
}

type dashboardService struct {
	repo   *repositories.Repository
	opts   Options
	logger *zap.Logger
}

func NewDashboardService(repo *repositories.Repository, opts Options, logger *zap.Logger) DashboardService {
	opts.defaults()
	return &dashboardService{repo: repo, opts: opts, logger: logger}
}

func (s *dashboardService) ForMLA(ctx context.Context, mlaID primitive.ObjectID) (*dto.Dashboard, error) {
	c, err := s.repo.Constituencies.GetByMLA(ctx, mlaID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFound("No constituency is assigned to this MLA")
		}
		return nil, Internal("Failed to load constituency", err)
	}
	return s.build(ctx, c)
}

func (s *dashboardService) ForConstituency(ctx context.Context, constituencyID primitive.ObjectID) (*dto.Dashboard, error) {
	c, err := s.repo.Constituencies.GetByID(ctx, constituencyID)
	if err != nil {
		return nil, notFoundOr(err, "constituency")
	}
	return s.build(ctx, c)
}

func (s *dashboardService) build(ctx context.Context, c *models.Constituency) (*dto.Dashboard, error) {
	var (
		panchayats  []models.Panchayat
		issues      []models.Issue
		departments []models.Department
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		panchayats, err = s.repo.Panchayats.List(gctx, &c.ID)
		return err
	})
	g.Go(func() (err error) {
		issues, err = s.repo.Issues.FindAll(gctx, repositories.IssueFilter{ConstituencyID: &c.ID})
		return err
	})
	g.Go(func() (err error) {
		departments, err = s.repo.Departments.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load dashboard data", zap.String("constituency_id", c.ID.Hex()), zap.Error(err))
		return nil, Internal("Failed to load dashboard", err)
	}

	d := &dto.Dashboard{
		Constituency:    dto.RefSummary{ID: c.ID, Name: c.Name, Code: c.Code},
		TotalPanchayats: len(panchayats),
		TotalIssues:     len(issues),
	}
	for _, p := range panchayats {
		d.TotalWards += len(p.WardList)
	}
	for _, issue := range issues {
		if issue.Status == models.StatusResolved {
			d.ResolvedIssues++
		}
	}

	d.Departments = departmentMetrics(issues, departments)
	d.Monthly = monthlyMetrics(issues, s.opts.Now().In(s.opts.Location), s.opts.Location)
	d.Categories = categoryShares(issues, departments)
	d.Priorities = priorityShares(issues)
	d.RecentIssues = mostRecent(issues, recentIssues)
	return d, nil
}

type metricAccumulator struct {
	metrics           dto.DepartmentMetrics
	resolutionDays    float64
	resolutionSamples int
	satisfaction      float64
	ratings           int
}

func (a *metricAccumulator) add(issue models.Issue) {
	a.metrics.Total++
	switch issue.Status {
	case models.StatusPending:
		a.metrics.Pending++
	case models.StatusInProgress:
		a.metrics.InProgress++
	case models.StatusResolved:
		a.metrics.Resolved++
		if issue.CompletedAt != nil {
			a.resolutionDays += issue.CompletedAt.Sub(issue.CreatedAt).Hours() / 24
			a.resolutionSamples++
		}
	case models.StatusRejected:
		a.metrics.Rejected++
	}
	if score, ok := issue.Satisfaction.Score(); ok {
		a.satisfaction += score
		a.ratings++
	}
}

func (a *metricAccumulator) result() dto.DepartmentMetrics {
	m := a.metrics
	if a.resolutionSamples > 0 {
		m.AvgResolutionDays = round1(a.resolutionDays / float64(a.resolutionSamples))
	}
	if a.ratings > 0 {
		m.AvgSatisfaction = round1(a.satisfaction / float64(a.ratings))
	}
	return m
}

// departmentMetrics lists every department, then an Unassigned row when some
// issues have no department.
func departmentMetrics(issues []models.Issue, departments []models.Department) []dto.DepartmentMetrics {
	acc := make(map[primitive.ObjectID]*metricAccumulator, len(departments))
	order := make([]*metricAccumulator, 0, len(departments)+1)
	for _, dept := range departments {
		id := dept.ID
		a := &metricAccumulator{metrics: dto.DepartmentMetrics{DepartmentID: &id, Name: dept.Name}}
		acc[dept.ID] = a
		order = append(order, a)
	}

	unassigned := &metricAccumulator{metrics: dto.DepartmentMetrics{Name: unassignedLabel}}
	for _, issue := range issues {
		if issue.DepartmentID != nil {
			if a, ok := acc[*issue.DepartmentID]; ok {
				a.add(issue)
				continue
			}
		}
		unassigned.add(issue)
	}
	if unassigned.metrics.Total > 0 {
		order = append(order, unassigned)
	}

	out := make([]dto.DepartmentMetrics, 0, len(order))
	for _, a := range order {
		out = append(out, a.result())
	}
	return out
}

// monthlyMetrics covers the dashboardMonths calendar months ending with the
// month of now, oldest first.
func monthlyMetrics(issues []models.Issue, now time.Time, loc *time.Location) []dto.MonthlyMetrics {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -(dashboardMonths - 1), 0)

	accs := make([]metricAccumulator, dashboardMonths)
	for _, issue := range issues {
		created := issue.CreatedAt.In(loc)
		offset := (created.Year()-first.Year())*12 + int(created.Month()) - int(first.Month())
		if offset < 0 || offset >= dashboardMonths {
			continue
		}
		accs[offset].add(issue)
	}

	out := make([]dto.MonthlyMetrics, dashboardMonths)
	for i := range accs {
		m := accs[i].result()
		out[i] = dto.MonthlyMetrics{
			Month:           first.AddDate(0, i, 0).Format(models.MonthLayout),
			Total:           m.Total,
			Resolved:        m.Resolved,
			AvgSatisfaction: m.AvgSatisfaction,
		}
	}
	return out
}

func categoryShares(issues []models.Issue, departments []models.Department) []dto.Share {
	names := make(map[primitive.ObjectID]string, len(departments))
	for _, d := range departments {
		names[d.ID] = d.Name
	}

	counts := map[string]int{}
	var labels []string
	for _, issue := range issues {
		label := unassignedLabel
		if issue.DepartmentID != nil {
			if name, ok := names[*issue.DepartmentID]; ok {
				label = name
			}
		}
		if _, seen := counts[label]; !seen {
			labels = append(labels, label)
		}
		counts[label]++
	}

	sort.SliceStable(labels, func(i, j int) bool { return counts[labels[i]] > counts[labels[j]] })
	return shares(labels, counts, len(issues))
}

func priorityShares(issues []models.Issue) []dto.Share {
	counts := map[string]int{}
	labels := make([]string, 0, len(models.Priorities))
	for _, p := range models.Priorities {
		labels = append(labels, string(p))
		counts[string(p)] = 0
	}
	for _, issue := range issues {
		counts[string(issue.Priority)]++
	}
	return shares(labels, counts, len(issues))
}

func shares(labels []string, counts map[string]int, total int) []dto.Share {
	out := make([]dto.Share, 0, len(labels))
	for _, label := range labels {
		share := dto.Share{Label: label, Count: counts[label]}
		if total > 0 {
			share.Percentage = round1(float64(counts[label]) * 100 / float64(total))
		}
		out = append(out, share)
	}
	return out
}

func mostRecent(issues []models.Issue, n int) []dto.IssueView {
	sorted := make([]models.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	views := make([]dto.IssueView, len(sorted))
	for i, issue := range sorted {
		views[i] = dto.NewIssueView(issue)
	}
	return views
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
