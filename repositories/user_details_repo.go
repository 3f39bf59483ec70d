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

type UserDetailsRepository interface {
	Create(ctx context.Context, details *models.UserDetails) error
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.UserDetails, error)
	Upsert(ctx context.Context, details *models.UserDetails) error
	// CountVoters counts citizen accounts registered in a constituency; active
	// voters are the verified subset.
	CountVoters(ctx context.Context, constituencyID primitive.ObjectID) (total, active int64, err error)
}

type userDetailsRepo struct {
	coll *mongo.Collection
}

func NewUserDetailsRepo(db *mongo.Database) UserDetailsRepository {
	return &userDetailsRepo{coll: db.Collection(UserDetailsCollection)}
}

func (r *userDetailsRepo) Create(ctx context.Context, details *models.UserDetails) error {
	now := time.Now()
	if details.ID.IsZero() {
		details.ID = primitive.NewObjectID()
	}
	details.CreatedAt, details.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, details)
	return translate(err)
}

func (r *userDetailsRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.UserDetails, error) {
	var details models.UserDetails
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&details); err != nil {
		return nil, translate(err)
	}
	return &details, nil
}

func (r *userDetailsRepo) Upsert(ctx context.Context, details *models.UserDetails) error {
	now := time.Now()
	details.UpdatedAt = now
	update := bson.M{
		"$set": bson.M{
			"constituency_id": details.ConstituencyID,
			"panchayat_id":    details.PanchayatID,
			"ward_no":         details.WardNo,
			"updated_at":      now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user_id": details.UserID}, update, opts).Decode(details)
	return translate(err)
}

func (r *userDetailsRepo) CountVoters(ctx context.Context, constituencyID primitive.ObjectID) (int64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"constituency_id": constituencyID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         UsersCollection,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$match", Value: bson.M{"user.role": models.RoleCitizen}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"active": bson.M{"$sum": bson.M{
				"$cond": bson.A{"$user.is_verified", 1, 0},
			}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total  int64 `bson:"total"`
		Active int64 `bson:"active"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Total, rows[0].Active, nil
}
