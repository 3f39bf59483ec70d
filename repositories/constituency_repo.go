package repositories

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civictrack-be/models"
)

type ConstituencyRepository interface {
	Create(ctx context.Context, c *models.Constituency) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Constituency, error)
	GetByMLA(ctx context.Context, mlaID primitive.ObjectID) (*models.Constituency, error)
	List(ctx context.Context, opts ListOptions) ([]models.Constituency, int64, error)
	ListWithMLA(ctx context.Context) ([]models.Constituency, error)
	// ExistsByName and ExistsByCode ignore the document with id exclude.
	ExistsByName(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error)
	ExistsByCode(ctx context.Context, code string, exclude primitive.ObjectID) (bool, error)
	Update(ctx context.Context, c *models.Constituency) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddPanchayat(ctx context.Context, id, panchayatID primitive.ObjectID) error
	RemovePanchayat(ctx context.Context, id, panchayatID primitive.ObjectID) error
}

type constituencyRepo struct {
	coll *mongo.Collection
}

func NewConstituencyRepo(db *mongo.Database) ConstituencyRepository {
	return &constituencyRepo{coll: db.Collection(ConstituenciesCollection)}
}

func (r *constituencyRepo) Create(ctx context.Context, c *models.Constituency) error {
	now := time.Now()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Panchayats == nil {
		c.Panchayats = []primitive.ObjectID{}
	}
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, c)
	return translate(err)
}

func (r *constituencyRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Constituency, error) {
	var c models.Constituency
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *constituencyRepo) GetByMLA(ctx context.Context, mlaID primitive.ObjectID) (*models.Constituency, error) {
	var c models.Constituency
	if err := r.coll.FindOne(ctx, bson.M{"mla_id": mlaID}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *constituencyRepo) List(ctx context.Context, opts ListOptions) ([]models.Constituency, int64, error) {
	opts = opts.Normalize()
	filter := bson.M{}
	if opts.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(opts.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"constituency_code": pattern},
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(opts.Skip()).
		SetLimit(int64(opts.Limit))
	cursor, err := r.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var list []models.Constituency
	if err := cursor.All(ctx, &list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *constituencyRepo) ListWithMLA(ctx context.Context) ([]models.Constituency, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"mla_id": bson.M{"$exists": true, "$ne": nil}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.Constituency
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *constituencyRepo) ExistsByName(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error) {
	return exists(ctx, r.coll, bson.M{"name": name}, exclude)
}

func (r *constituencyRepo) ExistsByCode(ctx context.Context, code string, exclude primitive.ObjectID) (bool, error) {
	return exists(ctx, r.coll, bson.M{"constituency_code": code}, exclude)
}

func (r *constituencyRepo) Update(ctx context.Context, c *models.Constituency) error {
	c.UpdatedAt = time.Now()
	set := bson.M{
		"name":              c.Name,
		"constituency_code": c.Code,
		"updated_at":        c.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if c.MLAID != nil {
		set["mla_id"] = *c.MLAID
	} else {
		update["$unset"] = bson.M{"mla_id": ""}
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *constituencyRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *constituencyRepo) AddPanchayat(ctx context.Context, id, panchayatID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"panchayats": panchayatID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

func (r *constituencyRepo) RemovePanchayat(ctx context.Context, id, panchayatID primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"panchayats": panchayatID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

func exists(ctx context.Context, coll *mongo.Collection, filter bson.M, exclude primitive.ObjectID) (bool, error) {
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	count, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
