package repositories

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civictrack-be/models"
)

// IssueFilter narrows issue queries. Zero-valued fields are ignored.
type IssueFilter struct {
	ConstituencyID *primitive.ObjectID
	PanchayatID    *primitive.ObjectID
	WardNo         string
	DepartmentID   *primitive.ObjectID
	ReportedBy     *primitive.ObjectID
	Status         models.IssueStatus
	Priority       models.Priority
	Search         string
	CreatedFrom    *time.Time // inclusive
	CreatedTo      *time.Time // exclusive
}

// BSON renders the filter as a MongoDB query document.
func (f IssueFilter) BSON() bson.M {
	q := bson.M{}
	if f.ConstituencyID != nil {
		q["constituency_id"] = *f.ConstituencyID
	}
	if f.PanchayatID != nil {
		q["panchayat_id"] = *f.PanchayatID
	}
	if f.WardNo != "" {
		q["ward_no"] = f.WardNo
	}
	if f.DepartmentID != nil {
		q["department_id"] = *f.DepartmentID
	}
	if f.ReportedBy != nil {
		q["reported_by"] = *f.ReportedBy
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"detail": pattern},
			bson.M{"locality": pattern},
		}
	}
	if f.CreatedFrom != nil || f.CreatedTo != nil {
		rng := bson.M{}
		if f.CreatedFrom != nil {
			rng["$gte"] = *f.CreatedFrom
		}
		if f.CreatedTo != nil {
			rng["$lt"] = *f.CreatedTo
		}
		q["created_at"] = rng
	}
	return q
}

// Matches evaluates the filter against an issue in memory, with the same
// semantics as BSON.
func (f IssueFilter) Matches(i *models.Issue) bool {
	switch {
	case f.ConstituencyID != nil && i.ConstituencyID != *f.ConstituencyID:
		return false
	case f.PanchayatID != nil && i.PanchayatID != *f.PanchayatID:
		return false
	case f.WardNo != "" && i.WardNo != f.WardNo:
		return false
	case f.DepartmentID != nil && (i.DepartmentID == nil || *i.DepartmentID != *f.DepartmentID):
		return false
	case f.ReportedBy != nil && i.ReportedBy != *f.ReportedBy:
		return false
	case f.Status != "" && i.Status != f.Status:
		return false
	case f.Priority != "" && i.Priority != f.Priority:
		return false
	case f.CreatedFrom != nil && i.CreatedAt.Before(*f.CreatedFrom):
		return false
	case f.CreatedTo != nil && !i.CreatedAt.Before(*f.CreatedTo):
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(i.Title), needle) &&
			!strings.Contains(strings.ToLower(i.Detail), needle) &&
			!strings.Contains(strings.ToLower(i.Locality), needle) {
			return false
		}
	}
	return true
}

// Sort keys accepted by IssueRepository.List.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortUpvotes = "upvotes"
)

type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	List(ctx context.Context, filter IssueFilter, opts ListOptions) ([]models.Issue, int64, error)
	FindAll(ctx context.Context, filter IssueFilter) ([]models.Issue, error)
	Count(ctx context.Context, filter IssueFilter) (int64, error)
	CountByPriority(ctx context.Context, filter IssueFilter) (map[models.Priority]int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, completedAt *time.Time) error
	SetHandledBy(ctx context.Context, id primitive.ObjectID, employeeID *primitive.ObjectID, label string) error
	SetDepartment(ctx context.Context, id primitive.ObjectID, departmentID primitive.ObjectID) error
	SetFeedback(ctx context.Context, id primitive.ObjectID, feedback string, satisfaction models.Satisfaction) error
	// AddUpvote increments the counter and records the voter in one update.
	// It reports false when userID had already voted.
	AddUpvote(ctx context.Context, id, userID primitive.ObjectID) (bool, error)
	// RemoveUpvote reports false when userID had not voted.
	RemoveUpvote(ctx context.Context, id, userID primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type issueRepo struct {
	coll *mongo.Collection
}

func NewIssueRepo(db *mongo.Database) IssueRepository {
	return &issueRepo{coll: db.Collection(IssuesCollection)}
}

func (r *issueRepo) Create(ctx context.Context, issue *models.Issue) error {
	now := time.Now()
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.UpvotedBy == nil {
		issue.UpvotedBy = []primitive.ObjectID{}
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, issue)
	return translate(err)
}

func (r *issueRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue); err != nil {
		return nil, translate(err)
	}
	return &issue, nil
}

func (r *issueRepo) List(ctx context.Context, filter IssueFilter, opts ListOptions) ([]models.Issue, int64, error) {
	opts = opts.Normalize()
	query := filter.BSON()

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	var sortOptions bson.D
	switch opts.Sort {
	case SortOldest:
		sortOptions = bson.D{{Key: "created_at", Value: 1}}
	case SortUpvotes:
		sortOptions = bson.D{{Key: "upvotes", Value: -1}, {Key: "created_at", Value: -1}}
	default:
		sortOptions = bson.D{{Key: "created_at", Value: -1}}
	}

	findOptions := options.Find().
		SetSort(sortOptions).
		SetSkip(opts.Skip()).
		SetLimit(int64(opts.Limit))

	cursor, err := r.coll.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (r *issueRepo) FindAll(ctx context.Context, filter IssueFilter) ([]models.Issue, error) {
	cursor, err := r.coll.Find(ctx, filter.BSON(), options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *issueRepo) Count(ctx context.Context, filter IssueFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, filter.BSON())
}

func (r *issueRepo) CountByPriority(ctx context.Context, filter IssueFilter) (map[models.Priority]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$priority",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Priority models.Priority `bson:"_id"`
		Count    int64           `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[models.Priority]int64, len(rows))
	for _, row := range rows {
		out[row.Priority] = row.Count
	}
	return out, nil
}

func (r *issueRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, completedAt *time.Time) error {
	set := bson.M{"status": status}
	if completedAt != nil {
		set["completed_at"] = *completedAt
	}
	return r.set(ctx, id, bson.M{"$set": set})
}

func (r *issueRepo) SetHandledBy(ctx context.Context, id primitive.ObjectID, employeeID *primitive.ObjectID, label string) error {
	if employeeID != nil {
		return r.set(ctx, id, bson.M{
			"$set":   bson.M{"handled_by": *employeeID},
			"$unset": bson.M{"handled_by_label": ""},
		})
	}
	return r.set(ctx, id, bson.M{
		"$set":   bson.M{"handled_by_label": label},
		"$unset": bson.M{"handled_by": ""},
	})
}

func (r *issueRepo) SetDepartment(ctx context.Context, id primitive.ObjectID, departmentID primitive.ObjectID) error {
	return r.set(ctx, id, bson.M{"$set": bson.M{"department_id": departmentID}})
}

func (r *issueRepo) SetFeedback(ctx context.Context, id primitive.ObjectID, feedback string, satisfaction models.Satisfaction) error {
	return r.set(ctx, id, bson.M{"$set": bson.M{
		"feedback":     feedback,
		"satisfaction": satisfaction,
	}})
}

func (r *issueRepo) AddUpvote(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "upvoted_by": bson.M{"$ne": userID}},
		bson.M{
			"$inc":  bson.M{"upvotes": 1},
			"$push": bson.M{"upvoted_by": userID},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *issueRepo) RemoveUpvote(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "upvoted_by": userID},
		bson.M{
			"$inc":  bson.M{"upvotes": -1},
			"$pull": bson.M{"upvoted_by": userID},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *issueRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *issueRepo) set(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
		update["$set"] = set
	}
	set["updated_at"] = time.Now()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
