package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civictrack-be/models"
	"civictrack-be/repositories"
	"civictrack-be/utils"
)

// ── in-memory repositories ──

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) update(id primitive.ObjectID, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(&u)
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return r.update(id, func(u *models.User) { u.Password = hash })
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id primitive.ObjectID, role models.Role) error {
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *fakeUserRepo) UpdateAccessToken(_ context.Context, id primitive.ObjectID, token string) error {
	return r.update(id, func(u *models.User) { u.AccessToken = token })
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id primitive.ObjectID) error {
	return r.update(id, func(u *models.User) { u.IsVerified = true })
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeUserDetailsRepo struct {
	mu        sync.Mutex
	details   map[primitive.ObjectID]models.UserDetails
	users     *fakeUserRepo
	createErr error
}

func (r *fakeUserDetailsRepo) Create(_ context.Context, d *models.UserDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.details[d.UserID]; ok {
		return repositories.ErrDuplicate
	}
	d.ID = primitive.NewObjectID()
	r.details[d.UserID] = *d
	return nil
}

func (r *fakeUserDetailsRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*models.UserDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.details[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &d, nil
}

func (r *fakeUserDetailsRepo) Upsert(_ context.Context, d *models.UserDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.details[d.UserID]; ok {
		d.ID = existing.ID
	} else {
		d.ID = primitive.NewObjectID()
	}
	r.details[d.UserID] = *d
	return nil
}

func (r *fakeUserDetailsRepo) CountVoters(ctx context.Context, constituencyID primitive.ObjectID) (int64, int64, error) {
	r.mu.Lock()
	var userIDs []primitive.ObjectID
	for _, d := range r.details {
		if d.ConstituencyID == constituencyID {
			userIDs = append(userIDs, d.UserID)
		}
	}
	r.mu.Unlock()

	var total, active int64
	for _, id := range userIDs {
		u, err := r.users.GetByID(ctx, id)
		if err != nil || u.Role != models.RoleCitizen {
			continue
		}
		total++
		if u.IsVerified {
			active++
		}
	}
	return total, active, nil
}

type fakeConstituencyRepo struct {
	mu      sync.Mutex
	items   map[primitive.ObjectID]models.Constituency
	linkErr error
}

func (r *fakeConstituencyRepo) Create(_ context.Context, c *models.Constituency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Panchayats == nil {
		c.Panchayats = []primitive.ObjectID{}
	}
	r.items[c.ID] = *c
	return nil
}

func (r *fakeConstituencyRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Constituency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *fakeConstituencyRepo) GetByMLA(_ context.Context, mlaID primitive.ObjectID) (*models.Constituency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.MLAID != nil && *c.MLAID == mlaID {
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeConstituencyRepo) sorted() []models.Constituency {
	out := make([]models.Constituency, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *fakeConstituencyRepo) List(_ context.Context, opts repositories.ListOptions) ([]models.Constituency, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	opts = opts.Normalize()
	var matched []models.Constituency
	for _, c := range r.sorted() {
		if opts.Search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(opts.Search)) {
			matched = append(matched, c)
		}
	}
	start := min(int(opts.Skip()), len(matched))
	end := min(start+opts.Limit, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *fakeConstituencyRepo) ListWithMLA(_ context.Context) ([]models.Constituency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Constituency
	for _, c := range r.sorted() {
		if c.MLAID != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConstituencyRepo) ExistsByName(_ context.Context, name string, exclude primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Name == name && c.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeConstituencyRepo) ExistsByCode(_ context.Context, code string, exclude primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Code == code && c.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeConstituencyRepo) Update(_ context.Context, c *models.Constituency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[c.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.Name, existing.Code, existing.MLAID = c.Name, c.Code, c.MLAID
	r.items[c.ID] = existing
	return nil
}

func (r *fakeConstituencyRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeConstituencyRepo) AddPanchayat(_ context.Context, id, panchayatID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.linkErr != nil {
		return r.linkErr
	}
	c := r.items[id]
	for _, p := range c.Panchayats {
		if p == panchayatID {
			return nil
		}
	}
	c.Panchayats = append(c.Panchayats, panchayatID)
	r.items[id] = c
	return nil
}

func (r *fakeConstituencyRepo) RemovePanchayat(_ context.Context, id, panchayatID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.items[id]
	kept := c.Panchayats[:0]
	for _, p := range c.Panchayats {
		if p != panchayatID {
			kept = append(kept, p)
		}
	}
	c.Panchayats = kept
	r.items[id] = c
	return nil
}

type fakePanchayatRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Panchayat
}

func (r *fakePanchayatRepo) Create(_ context.Context, p *models.Panchayat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.items[p.ID] = *p
	return nil
}

func (r *fakePanchayatRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Panchayat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p.WardList = append([]models.Ward(nil), p.WardList...)
	return &p, nil
}

func (r *fakePanchayatRepo) List(_ context.Context, constituencyID *primitive.ObjectID) ([]models.Panchayat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Panchayat
	for _, p := range r.items {
		if constituencyID == nil || p.ConstituencyID == *constituencyID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakePanchayatRepo) ExistsByName(_ context.Context, constituencyID primitive.ObjectID, name string, exclude primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.ConstituencyID == constituencyID && p.Name == name && p.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePanchayatRepo) ExistsByCode(_ context.Context, code string, exclude primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Code == code && p.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePanchayatRepo) CountByConstituency(ctx context.Context, constituencyID primitive.ObjectID) (int64, error) {
	list, _ := r.List(ctx, &constituencyID)
	return int64(len(list)), nil
}

func (r *fakePanchayatRepo) Update(_ context.Context, p *models.Panchayat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.items[p.ID] = *p
	return nil
}

func (r *fakePanchayatRepo) AddWards(_ context.Context, id primitive.ObjectID, wards []models.Ward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.WardList = append(append([]models.Ward(nil), p.WardList...), wards...)
	r.items[id] = p
	return nil
}

func (r *fakePanchayatRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeDepartmentRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Department
}

func (r *fakeDepartmentRepo) Create(_ context.Context, d *models.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	r.items[d.ID] = *d
	return nil
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &d, nil
}

func (r *fakeDepartmentRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Department
	for _, id := range ids {
		if d, ok := r.items[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDepartmentRepo) GetByName(_ context.Context, name string) (*models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if strings.EqualFold(d.Name, name) {
			return &d, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeDepartmentRepo) GetByHead(_ context.Context, headID primitive.ObjectID) (*models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if d.HeadID == headID {
			return &d, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeDepartmentRepo) List(_ context.Context) ([]models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Department, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeDepartmentRepo) Update(_ context.Context, d *models.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[d.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.items[d.ID] = *d
	return nil
}

func (r *fakeDepartmentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeEmployeeRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.DepartmentEmployee
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *models.DepartmentEmployee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	r.items[e.ID] = *e
	return nil
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.DepartmentEmployee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &e, nil
}

func (r *fakeEmployeeRepo) GetByUser(_ context.Context, userID primitive.ObjectID) (*models.DepartmentEmployee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if e.UserID == userID {
			return &e, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeEmployeeRepo) ListByDepartment(_ context.Context, departmentID primitive.ObjectID) ([]models.DepartmentEmployee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DepartmentEmployee
	for _, e := range r.items {
		if e.DepartmentID == departmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeEmployeeRepo) DeleteByDepartment(_ context.Context, departmentID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.items {
		if e.DepartmentID == departmentID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

type fakeIssueRepo struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Issue
}

func (r *fakeIssueRepo) Create(_ context.Context, issue *models.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = time.Now()
	}
	r.items[issue.ID] = *issue
	return nil
}

func (r *fakeIssueRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	issue.UpvotedBy = append([]primitive.ObjectID(nil), issue.UpvotedBy...)
	return &issue, nil
}

func (r *fakeIssueRepo) FindAll(_ context.Context, filter repositories.IssueFilter) ([]models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Issue
	for _, issue := range r.items {
		issue := issue
		if filter.Matches(&issue) {
			out = append(out, issue)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeIssueRepo) List(ctx context.Context, filter repositories.IssueFilter, opts repositories.ListOptions) ([]models.Issue, int64, error) {
	all, _ := r.FindAll(ctx, filter)
	opts = opts.Normalize()
	switch opts.Sort {
	case repositories.SortOldest:
	case repositories.SortUpvotes:
		sort.SliceStable(all, func(i, j int) bool { return all[i].Upvotes > all[j].Upvotes })
	default:
		sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	}
	start := min(int(opts.Skip()), len(all))
	end := min(start+opts.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (r *fakeIssueRepo) Count(ctx context.Context, filter repositories.IssueFilter) (int64, error) {
	all, _ := r.FindAll(ctx, filter)
	return int64(len(all)), nil
}

func (r *fakeIssueRepo) CountByPriority(ctx context.Context, filter repositories.IssueFilter) (map[models.Priority]int64, error) {
	all, _ := r.FindAll(ctx, filter)
	out := map[models.Priority]int64{}
	for _, issue := range all {
		out[issue.Priority]++
	}
	return out, nil
}

func (r *fakeIssueRepo) update(id primitive.ObjectID, fn func(*models.Issue) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.items[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	issue.UpvotedBy = append([]primitive.ObjectID(nil), issue.UpvotedBy...)
	if !fn(&issue) {
		return false, nil
	}
	r.items[id] = issue
	return true, nil
}

func (r *fakeIssueRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.IssueStatus, completedAt *time.Time) error {
	_, err := r.update(id, func(i *models.Issue) bool {
		i.Status = status
		if completedAt != nil {
			i.CompletedAt = completedAt
		}
		return true
	})
	return err
}

func (r *fakeIssueRepo) SetHandledBy(_ context.Context, id primitive.ObjectID, employeeID *primitive.ObjectID, label string) error {
	_, err := r.update(id, func(i *models.Issue) bool {
		i.HandledBy, i.HandledByLabel = employeeID, label
		return true
	})
	return err
}

func (r *fakeIssueRepo) SetDepartment(_ context.Context, id primitive.ObjectID, departmentID primitive.ObjectID) error {
	_, err := r.update(id, func(i *models.Issue) bool {
		i.DepartmentID = &departmentID
		return true
	})
	return err
}

func (r *fakeIssueRepo) SetFeedback(_ context.Context, id primitive.ObjectID, feedback string, satisfaction models.Satisfaction) error {
	_, err := r.update(id, func(i *models.Issue) bool {
		i.Feedback, i.Satisfaction = feedback, satisfaction
		return true
	})
	return err
}

func (r *fakeIssueRepo) AddUpvote(_ context.Context, id, userID primitive.ObjectID) (bool, error) {
	ok, err := r.update(id, func(i *models.Issue) bool {
		if i.HasUpvoted(userID) {
			return false
		}
		i.Upvotes++
		i.UpvotedBy = append(i.UpvotedBy, userID)
		return true
	})
	if err == repositories.ErrNotFound {
		return false, nil
	}
	return ok, err
}

func (r *fakeIssueRepo) RemoveUpvote(_ context.Context, id, userID primitive.ObjectID) (bool, error) {
	ok, err := r.update(id, func(i *models.Issue) bool {
		if !i.HasUpvoted(userID) {
			return false
		}
		i.Upvotes--
		kept := i.UpvotedBy[:0]
		for _, v := range i.UpvotedBy {
			if v != userID {
				kept = append(kept, v)
			}
		}
		i.UpvotedBy = kept
		return true
	})
	if err == repositories.ErrNotFound {
		return false, nil
	}
	return ok, err
}

func (r *fakeIssueRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeSuggestionRepo struct {
	mu      sync.Mutex
	items   map[primitive.ObjectID]models.AISuggestion
	creates int
}

func (r *fakeSuggestionRepo) GetByMLAMonth(_ context.Context, mlaID primitive.ObjectID, month string) (*models.AISuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.MLAID == mlaID && s.Month == month {
			return &s, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeSuggestionRepo) Create(_ context.Context, s *models.AISuggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.MLAID == s.MLAID && existing.Month == s.Month {
			return repositories.ErrDuplicate
		}
	}
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	r.items[s.ID] = *s
	r.creates++
	return nil
}

func (r *fakeSuggestionRepo) ListActiveByMLA(_ context.Context, mlaID primitive.ObjectID, limit int) ([]models.AISuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AISuggestion
	for _, s := range r.items {
		if s.MLAID == mlaID && s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSuggestionRepo) MarkInactiveBefore(_ context.Context, cutoff string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.items {
		if s.Month < cutoff && s.IsActive {
			s.IsActive = false
			r.items[id] = s
			n++
		}
	}
	return n, nil
}

// ── fixture ──

type fixture struct {
	repo           *repositories.Repository
	users          *fakeUserRepo
	details        *fakeUserDetailsRepo
	constituencies *fakeConstituencyRepo
	panchayats     *fakePanchayatRepo
	departments    *fakeDepartmentRepo
	employees      *fakeEmployeeRepo
	issues         *fakeIssueRepo
	suggestions    *fakeSuggestionRepo
	tokens         *utils.TokenManager
	logger         *zap.Logger
}

func newFixture() *fixture {
	users := &fakeUserRepo{users: map[primitive.ObjectID]models.User{}}
	f := &fixture{
		users:          users,
		details:        &fakeUserDetailsRepo{details: map[primitive.ObjectID]models.UserDetails{}, users: users},
		constituencies: &fakeConstituencyRepo{items: map[primitive.ObjectID]models.Constituency{}},
		panchayats:     &fakePanchayatRepo{items: map[primitive.ObjectID]models.Panchayat{}},
		departments:    &fakeDepartmentRepo{items: map[primitive.ObjectID]models.Department{}},
		employees:      &fakeEmployeeRepo{items: map[primitive.ObjectID]models.DepartmentEmployee{}},
		issues:         &fakeIssueRepo{items: map[primitive.ObjectID]models.Issue{}},
		suggestions:    &fakeSuggestionRepo{items: map[primitive.ObjectID]models.AISuggestion{}},
		tokens:         utils.NewTokenManager("test-secret", 7*24*time.Hour),
		logger:         zap.NewNop(),
	}
	utils.RegisterValidators()
	f.repo = &repositories.Repository{
		Users:               f.users,
		UserDetails:         f.details,
		Constituencies:      f.constituencies,
		Panchayats:          f.panchayats,
		Departments:         f.departments,
		DepartmentEmployees: f.employees,
		Issues:              f.issues,
		AISuggestions:       f.suggestions,
	}
	return f
}

func (f *fixture) addUser(role models.Role, email string) *models.User {
	u := &models.User{Name: strings.Split(email, "@")[0], Email: email, Password: "secret1", Role: role}
	if err := u.HashPassword(); err != nil {
		panic(err)
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (f *fixture) addConstituency(name string, mla *primitive.ObjectID) *models.Constituency {
	c := &models.Constituency{Name: name, Code: strings.ToUpper(name[:3]), MLAID: mla}
	_ = f.constituencies.Create(context.Background(), c)
	return c
}

func (f *fixture) addPanchayat(name string, constituencyID primitive.ObjectID, wardIDs ...string) *models.Panchayat {
	p := &models.Panchayat{Name: name, Code: "P-" + name, ConstituencyID: constituencyID}
	for _, w := range wardIDs {
		p.WardList = append(p.WardList, models.Ward{WardID: w, WardName: "Ward " + w})
	}
	_ = f.panchayats.Create(context.Background(), p)
	_ = f.constituencies.AddPanchayat(context.Background(), constituencyID, p.ID)
	return p
}

func (f *fixture) addDepartment(name string, headID primitive.ObjectID) *models.Department {
	d := &models.Department{Name: name, HeadID: headID}
	_ = f.departments.Create(context.Background(), d)
	return d
}

// citizen creates a citizen placed in ward w of panchayat p.
func (f *fixture) citizen(email string, c *models.Constituency, p *models.Panchayat, w string) *models.User {
	u := f.addUser(models.RoleCitizen, email)
	_ = f.details.Create(context.Background(), &models.UserDetails{
		UserID:         u.ID,
		ConstituencyID: c.ID,
		PanchayatID:    p.ID,
		WardNo:         w,
	})
	return u
}

// stubClassifier returns a fixed result and counts calls.
type stubClassifier struct {
	result ClassificationResult
	calls  int
}

func (s *stubClassifier) Classify(context.Context, string, string) ClassificationResult {
	s.calls++
	return s.result
}

var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

// service builds the full service graph over the fakes with a fixed clock.
func (f *fixture) service(opts Options) *Service {
	if opts.Tokens == nil {
		opts.Tokens = f.tokens
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	if opts.RandIntN == nil {
		opts.RandIntN = func(int) int { return 1 }
	}
	return NewService(f.repo, opts, f.logger)
}

func requireStatus(t *testing.T, err error, status int) *AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := AsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, status, appErr.Status, appErr.Message)
	return appErr
}
