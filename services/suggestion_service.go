package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"civictrack-be/dto"
	"civictrack-be/models"
	"civictrack-be/repositories"
)

// HistoryLimit is the default number of past reports returned by History.
const HistoryLimit = 6

type SuggestionService interface {
	AnalyzeIssues(ctx context.Context, constituencyID primitive.ObjectID, month string) ([]dto.IssueBucket, error)
	// GenerateForMLA is idempotent per (mla, month): an existing report is
	// returned unchanged.
	GenerateForMLA(ctx context.Context, mlaID primitive.ObjectID, month string) (*models.AISuggestion, error)
	GetForMLA(ctx context.Context, mlaID primitive.ObjectID, month string) (*models.AISuggestion, error)
	History(ctx context.Context, mlaID primitive.ObjectID, limit int) ([]models.AISuggestion, error)
	MarkOldInactive(ctx context.Context, cutoffMonth string) (int64, error)
	// GenerateForAll runs GenerateForMLA for every constituency with an MLA.
	// One MLA failing does not stop the others.
	GenerateForAll(ctx context.Context, month string) (*dto.GenerationSummary, error)
	CurrentMonth() string
}

type suggestionService struct {
	repo   *repositories.Repository
	opts   Options
	logger *zap.Logger
}

func NewSuggestionService(repo *repositories.Repository, opts Options, logger *zap.Logger) SuggestionService {
	opts.defaults()
	return &suggestionService{repo: repo, opts: opts, logger: logger}
}

func (s *suggestionService) CurrentMonth() string {
	return s.opts.Now().In(s.opts.Location).Format(models.MonthLayout)
}

// monthRange resolves month (or the current month when empty) to its
// normalized label and [start, end) bounds in the business timezone.
func (s *suggestionService) monthRange(month string) (string, time.Time, time.Time, error) {
	if month == "" {
		month = s.CurrentMonth()
	}
	start, err := time.ParseInLocation(models.MonthLayout, month, s.opts.Location)
	if err != nil {
		return "", time.Time{}, time.Time{}, reason(http.StatusBadRequest, ErrInvalidMonth)
	}
	return start.Format(models.MonthLayout), start, start.AddDate(0, 1, 0), nil
}

func (s *suggestionService) AnalyzeIssues(ctx context.Context, constituencyID primitive.ObjectID, month string) ([]dto.IssueBucket, error) {
	_, start, end, err := s.monthRange(month)
	if err != nil {
		return nil, err
	}

	issues, err := s.repo.Issues.FindAll(ctx, repositories.IssueFilter{
		ConstituencyID: &constituencyID,
		CreatedFrom:    &start,
		CreatedTo:      &end,
	})
	if err != nil {
		s.logger.Error("failed to load issues for analysis", zap.String("constituency_id", constituencyID.Hex()), zap.Error(err))
		return nil, Internal("Failed to analyze issues", err)
	}
	return bucketIssues(issues), nil
}

type bucketKey struct {
	department primitive.ObjectID
	locality   string
}

type bucketTotals struct {
	department *primitive.ObjectID
	locality   string
	count      int
	upvotes    int
	resolved   int
}

// bucketIssues groups issues by (department, locality) in order of first
// appearance.
func bucketIssues(issues []models.Issue) []dto.IssueBucket {
	index := map[bucketKey]int{}
	var totals []*bucketTotals

	for _, issue := range issues {
		locality := strings.ToLower(strings.TrimSpace(issue.Locality))
		key := bucketKey{locality: locality}
		if issue.DepartmentID != nil {
			key.department = *issue.DepartmentID
		}

		i, ok := index[key]
		if !ok {
			i = len(totals)
			index[key] = i
			totals = append(totals, &bucketTotals{department: issue.DepartmentID, locality: locality})
		}
		t := totals[i]
		t.count++
		t.upvotes += issue.Upvotes
		if issue.Status == models.StatusResolved {
			t.resolved++
		}
	}

	buckets := make([]dto.IssueBucket, 0, len(totals))
	for _, t := range totals {
		buckets = append(buckets, dto.IssueBucket{
			DepartmentID:   t.department,
			Locality:       t.locality,
			IssueCount:     t.count,
			AvgUpvotes:     int(math.Round(float64(t.upvotes) / float64(t.count))),
			ResolutionRate: int(math.Round(float64(t.resolved) * 100 / float64(t.count))),
		})
	}
	return buckets
}

type suggestionTemplate struct {
	title       string
	impact      string
	description string
	effort      string
	cost        string
}

var suggestionTemplates = []suggestionTemplate{
	{"Road repair drive in %s", "high", "Schedule a focused repair drive for the damaged stretches reported by residents.", "2-4 weeks", "₹5-10 lakh"},
	{"Drinking water supply audit for %s", "high", "Audit pipelines and storage to fix recurring supply interruptions.", "3-6 weeks", "₹3-8 lakh"},
	{"Streetlight restoration in %s", "medium", "Replace faulty fixtures and add lights on dark stretches flagged in complaints.", "1-2 weeks", "₹1-3 lakh"},
	{"Waste collection schedule for %s", "high", "Increase pickup frequency and add bins at the reported hotspots.", "1-3 weeks", "₹1-2 lakh"},
	{"Drainage clearance in %s", "high", "Desilt drains before the monsoon to prevent the waterlogging residents report.", "2-3 weeks", "₹2-5 lakh"},
	{"Public health camp in %s", "medium", "Hold a health camp and check availability of essential medicines at the local centre.", "1 week", "₹50,000-1 lakh"},
	{"School facility upgrade in %s", "medium", "Repair classrooms, toilets and drinking water points at local schools.", "4-8 weeks", "₹5-15 lakh"},
	{"Bus stop and route review for %s", "low", "Review bus frequency and repair shelters along the reported routes.", "2-4 weeks", "₹1-4 lakh"},
	{"Grievance camp for land records in %s", "low", "Run a camp to resolve pending certificate and land record requests.", "1-2 weeks", "₹25,000-75,000"},
	{"Community feedback meeting in %s", "medium", "Meet residents to prioritise the open complaints and share timelines.", "1 week", "₹10,000-25,000"},
}

// GenerateMockSuggestions maps buckets in order onto the canned templates,
// round-robin, producing at most models.MaxSuggestions suggestions.
func GenerateMockSuggestions(buckets []dto.IssueBucket) []models.Suggestion {
	caser := cases.Title(language.English)
	n := min(len(buckets), models.MaxSuggestions)

	out := make([]models.Suggestion, 0, n)
	for i := 0; i < n; i++ {
		b := buckets[i]
		tpl := suggestionTemplates[i%len(suggestionTemplates)]
		location := caser.String(b.Locality)
		if location == "" {
			location = "Constituency"
		}
		out = append(out, models.Suggestion{
			Title:        fmt.Sprintf(tpl.title, location),
			Status:       "proposed",
			Impact:       tpl.impact,
			Description:  tpl.description,
			Effort:       tpl.effort,
			Cost:         tpl.cost,
			DepartmentID: b.DepartmentID,
			Location:     location,
			Metrics:      b.Metrics(),
		})
	}
	return out
}

func (s *suggestionService) GenerateForMLA(ctx context.Context, mlaID primitive.ObjectID, month string) (*models.AISuggestion, error) {
	month, _, _, err := s.monthRange(month)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.AISuggestions.GetByMLAMonth(ctx, mlaID, month)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		s.logger.Error("failed to load suggestions", zap.String("mla_id", mlaID.Hex()), zap.String("month", month), zap.Error(err))
		return nil, Internal("Failed to load suggestions", err)
	}

	constituency, err := s.repo.Constituencies.GetByMLA(ctx, mlaID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFound("No constituency is assigned to this MLA")
		}
		return nil, Internal("Failed to load constituency", err)
	}

	buckets, err := s.AnalyzeIssues(ctx, constituency.ID, month)
	if err != nil {
		return nil, err
	}

	doc := &models.AISuggestion{
		MLAID:          mlaID,
		ConstituencyID: constituency.ID,
		Month:          month,
		Suggestions:    GenerateMockSuggestions(buckets),
		GeneratedAt:    s.opts.Now(),
		IsActive:       true,
	}
	if err := s.repo.AISuggestions.Create(ctx, doc); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// generated concurrently; the stored report wins
			return s.repo.AISuggestions.GetByMLAMonth(ctx, mlaID, month)
		}
		s.logger.Error("failed to store suggestions", zap.String("mla_id", mlaID.Hex()), zap.String("month", month), zap.Error(err))
		return nil, Internal("Failed to store suggestions", err)
	}

	s.logger.Info("suggestions generated",
		zap.String("mla_id", mlaID.Hex()),
		zap.String("month", month),
		zap.Int("count", len(doc.Suggestions)),
	)
	return doc, nil
}

// GetForMLA serves only active reports. Archived months are not regenerated.
func (s *suggestionService) GetForMLA(ctx context.Context, mlaID primitive.ObjectID, month string) (*models.AISuggestion, error) {
	doc, err := s.GenerateForMLA(ctx, mlaID, month)
	if err != nil {
		return nil, err
	}
	if !doc.IsActive {
		return nil, reason(http.StatusNotFound, ErrSuggestionsArchived)
	}
	return doc, nil
}

func (s *suggestionService) History(ctx context.Context, mlaID primitive.ObjectID, limit int) ([]models.AISuggestion, error) {
	if limit <= 0 {
		limit = HistoryLimit
	}
	list, err := s.repo.AISuggestions.ListActiveByMLA(ctx, mlaID, limit)
	if err != nil {
		s.logger.Error("failed to list suggestion history", zap.String("mla_id", mlaID.Hex()), zap.Error(err))
		return nil, Internal("Failed to load suggestion history", err)
	}
	if list == nil {
		list = []models.AISuggestion{}
	}
	return list, nil
}

func (s *suggestionService) MarkOldInactive(ctx context.Context, cutoffMonth string) (int64, error) {
	if _, err := time.Parse(models.MonthLayout, cutoffMonth); err != nil {
		return 0, reason(http.StatusBadRequest, ErrInvalidMonth)
	}

	updated, err := s.repo.AISuggestions.MarkInactiveBefore(ctx, cutoffMonth)
	if err != nil {
		s.logger.Error("failed to archive suggestions", zap.String("cutoff", cutoffMonth), zap.Error(err))
		return 0, Internal("Failed to archive suggestions", err)
	}
	s.logger.Info("suggestions archived", zap.String("cutoff", cutoffMonth), zap.Int64("updated", updated))
	return updated, nil
}

func (s *suggestionService) GenerateForAll(ctx context.Context, month string) (*dto.GenerationSummary, error) {
	month, _, _, err := s.monthRange(month)
	if err != nil {
		return nil, err
	}

	constituencies, err := s.repo.Constituencies.ListWithMLA(ctx)
	if err != nil {
		s.logger.Error("failed to list constituencies with MLA", zap.Error(err))
		return nil, Internal("Failed to list constituencies", err)
	}

	summary := &dto.GenerationSummary{Month: month}
	for _, c := range constituencies {
		if c.MLAID == nil {
			continue
		}
		if _, err := s.GenerateForMLA(ctx, *c.MLAID, month); err != nil {
			summary.Failed++
			s.logger.Error("failed to generate suggestions",
				zap.String("constituency_id", c.ID.Hex()),
				zap.String("mla_id", c.MLAID.Hex()),
				zap.String("month", month),
				zap.Error(err),
			)
			continue
		}
		summary.Generated++
	}
	return summary, nil
}
