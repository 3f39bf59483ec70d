package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civictrack-be/dto"
)

type fakeJobs struct {
	month       string
	generated   []string
	generateErr error
	cutoffs     []string
}

func (f *fakeJobs) GenerateForAll(_ context.Context, month string) (*dto.GenerationSummary, error) {
	f.generated = append(f.generated, month)
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return &dto.GenerationSummary{Month: month, Generated: 2}, nil
}

func (f *fakeJobs) MarkOldInactive(_ context.Context, cutoff string) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return 3, nil
}

func (f *fakeJobs) CurrentMonth() string { return f.month }

func newTestScheduler(t *testing.T, jobs SuggestionJobs) *Scheduler {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	s, err := New(jobs, loc, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestCutoffMonth(t *testing.T) {
	tests := []struct {
		now    time.Time
		months int
		want   string
	}{
		{time.Date(2024, 4, 1, 2, 0, 0, 0, time.UTC), 12, "2023-04"},
		{time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC), 12, "2023-01"},
		{time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), 1, "2024-02"},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 1, "2023-12"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CutoffMonth(tt.now, tt.months), tt.now.String())
	}
}

func TestRegisterSuggestionJobs(t *testing.T) {
	s := newTestScheduler(t, &fakeJobs{})

	require.NoError(t, s.RegisterSuggestionJobs())

	names := map[string]bool{}
	for _, job := range s.Jobs() {
		names[job.Name()] = true
	}
	assert.Equal(t, map[string]bool{"suggestions-generate": true, "suggestions-cleanup": true}, names)
}

func TestGenerateMonthly(t *testing.T) {
	jobs := &fakeJobs{month: "2024-04"}
	s := newTestScheduler(t, jobs)

	s.GenerateMonthly(context.Background())
	assert.Equal(t, []string{"2024-04"}, jobs.generated)

	jobs.generateErr = errors.New("store unavailable")
	s.GenerateMonthly(context.Background())
	assert.Len(t, jobs.generated, 2)
}

func TestCleanup_UsesBusinessTimezone(t *testing.T) {
	jobs := &fakeJobs{}
	s := newTestScheduler(t, jobs)
	// 20:30 UTC on March 31 is already April 1 in India
	s.now = func() time.Time { return time.Date(2024, 3, 31, 20, 30, 0, 0, time.UTC) }

	s.Cleanup(context.Background())

	assert.Equal(t, []string{"2023-04"}, jobs.cutoffs)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(t, &fakeJobs{})
	require.NoError(t, s.RegisterSuggestionJobs())

	require.NoError(t, s.Stop())
	s.Start()
	s.Start()
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}
