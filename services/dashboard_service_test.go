package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/dto"
	"civictrack-be/models"
)

func TestDashboardForMLA(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mla := f.addUser(models.RoleMLAStaff, "mla@example.com")
	c := f.addConstituency("North", &mla.ID)
	p := f.addPanchayat("Green", c.ID, "W1", "W2")
	f.addPanchayat("Blue", c.ID, "W1")
	water := f.addDepartment("Water Supply", primitive.NewObjectID())
	roads := f.addDepartment("Public Works", primitive.NewObjectID())

	resolved := f.addIssue(c, p, "School Road", &water.ID, models.StatusResolved, 2, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	done := resolved.CreatedAt.Add(3 * 24 * time.Hour)
	require.NoError(t, f.issues.UpdateStatus(ctx, resolved.ID, models.StatusResolved, &done))
	require.NoError(t, f.issues.SetFeedback(ctx, resolved.ID, "ok", models.SatisfactionAverage))

	f.addIssue(c, p, "Market", &water.ID, models.StatusPending, 0, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	f.addIssue(c, p, "Market", nil, models.StatusInProgress, 0, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))

	other := f.addConstituency("South", nil)
	f.addIssue(other, p, "Elsewhere", &roads.ID, models.StatusPending, 0, testNow)

	d, err := f.service(Options{}).Dashboard.ForMLA(ctx, mla.ID)
	require.NoError(t, err)

	assert.Equal(t, "North", d.Constituency.Name)
	assert.Equal(t, 2, d.TotalPanchayats)
	assert.Equal(t, 3, d.TotalWards)
	assert.Equal(t, 3, d.TotalIssues)
	assert.Equal(t, 1, d.ResolvedIssues)

	require.Len(t, d.Departments, 3)
	assert.Equal(t, "Public Works", d.Departments[0].Name)
	assert.Zero(t, d.Departments[0].Total)
	waterMetrics := d.Departments[1]
	assert.Equal(t, "Water Supply", waterMetrics.Name)
	assert.Equal(t, 2, waterMetrics.Total)
	assert.Equal(t, 1, waterMetrics.Resolved)
	assert.Equal(t, 1, waterMetrics.Pending)
	assert.Equal(t, 3.0, waterMetrics.AvgResolutionDays)
	assert.Equal(t, 3.0, waterMetrics.AvgSatisfaction)
	assert.Equal(t, "Unassigned", d.Departments[2].Name)
	assert.Equal(t, 1, d.Departments[2].InProgress)

	require.Len(t, d.Monthly, 6)
	assert.Equal(t, "2023-10", d.Monthly[0].Month)
	assert.Equal(t, "2024-03", d.Monthly[5].Month)
	assert.Equal(t, 1, d.Monthly[5].Resolved)
	assert.Equal(t, 1, d.Monthly[4].Total)

	assert.Equal(t, []dto.Share{
		{Label: "Water Supply", Count: 2, Percentage: 66.7},
		{Label: "Unassigned", Count: 1, Percentage: 33.3},
	}, d.Categories)
	assert.Equal(t, []dto.Share{
		{Label: "high", Count: 0},
		{Label: "normal", Count: 3, Percentage: 100},
		{Label: "low", Count: 0},
	}, d.Priorities)

	require.Len(t, d.RecentIssues, 3)
	assert.Equal(t, resolved.ID, d.RecentIssues[0].ID)
}

func TestDashboardErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.service(Options{}).Dashboard

	_, err := svc.ForMLA(ctx, primitive.NewObjectID())
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.ForConstituency(ctx, primitive.NewObjectID())
	requireStatus(t, err, http.StatusNotFound)

	c := f.addConstituency("Empty", nil)
	d, err := svc.ForConstituency(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, d.TotalIssues)
	assert.Empty(t, d.Categories)
	assert.Len(t, d.Monthly, 6)
}

func TestDashboardRecentIssuesHideAnonymousReporter(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mla := f.addUser(models.RoleMLAStaff, "mla@example.com")
	c := f.addConstituency("North", &mla.ID)
	p := f.addPanchayat("Green", c.ID, "W1")

	reporter := primitive.NewObjectID()
	anonymous := &models.Issue{
		Title:          "Broken pipe",
		Detail:         "detail",
		Locality:       "Market",
		ReportedBy:     reporter,
		IsAnonymous:    true,
		ConstituencyID: c.ID,
		PanchayatID:    p.ID,
		WardNo:         "W1",
		Status:         models.StatusPending,
		Priority:       models.PriorityNormal,
		CreatedAt:      testNow,
	}
	require.NoError(t, f.issues.Create(ctx, anonymous))
	named := f.addIssue(c, p, "School Road", nil, models.StatusPending, 0, testNow.Add(-time.Hour))

	d, err := f.service(Options{}).Dashboard.ForMLA(ctx, mla.ID)
	require.NoError(t, err)
	require.Len(t, d.RecentIssues, 2)
	assert.Equal(t, anonymous.ID, d.RecentIssues[0].ID)
	assert.Nil(t, d.RecentIssues[0].ReportedBy)
	require.NotNil(t, d.RecentIssues[1].ReportedBy)
	assert.Equal(t, named.ReportedBy, *d.RecentIssues[1].ReportedBy)

	body, err := json.Marshal(d.RecentIssues)
	require.NoError(t, err)
	assert.NotContains(t, string(body), reporter.Hex())
}
