package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civictrack-be/models"
)

type AISuggestionRepository interface {
	GetByMLAMonth(ctx context.Context, mlaID primitive.ObjectID, month string) (*models.AISuggestion, error)
	// Create returns ErrDuplicate when a report for (MLAID, Month) exists.
	Create(ctx context.Context, s *models.AISuggestion) error
	ListActiveByMLA(ctx context.Context, mlaID primitive.ObjectID, limit int) ([]models.AISuggestion, error)
	// MarkInactiveBefore archives reports whose month sorts strictly before
	// cutoff and returns how many changed.
	MarkInactiveBefore(ctx context.Context, cutoff string) (int64, error)
}

type aiSuggestionRepo struct {
	coll *mongo.Collection
}

func NewAISuggestionRepo(db *mongo.Database) AISuggestionRepository {
	return &aiSuggestionRepo{coll: db.Collection(AISuggestionsCollection)}
}

func (r *aiSuggestionRepo) GetByMLAMonth(ctx context.Context, mlaID primitive.ObjectID, month string) (*models.AISuggestion, error) {
	var s models.AISuggestion
	if err := r.coll.FindOne(ctx, bson.M{"mla_id": mlaID, "month": month}).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *aiSuggestionRepo) Create(ctx context.Context, s *models.AISuggestion) error {
	now := time.Now()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	s.CreatedAt, s.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, s)
	return translate(err)
}

func (r *aiSuggestionRepo) ListActiveByMLA(ctx context.Context, mlaID primitive.ObjectID, limit int) ([]models.AISuggestion, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "month", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{"mla_id": mlaID, "is_active": true}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.AISuggestion
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *aiSuggestionRepo) MarkInactiveBefore(ctx context.Context, cutoff string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"month": bson.M{"$lt": cutoff}, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
