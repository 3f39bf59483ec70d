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

type PanchayatRepository interface {
	Create(ctx context.Context, p *models.Panchayat) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Panchayat, error)
	// List returns every panchayat, or those of one constituency when
	// constituencyID is non-nil.
	List(ctx context.Context, constituencyID *primitive.ObjectID) ([]models.Panchayat, error)
	ExistsByName(ctx context.Context, constituencyID primitive.ObjectID, name string, exclude primitive.ObjectID) (bool, error)
	ExistsByCode(ctx context.Context, code string, exclude primitive.ObjectID) (bool, error)
	CountByConstituency(ctx context.Context, constituencyID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, p *models.Panchayat) error
	AddWards(ctx context.Context, id primitive.ObjectID, wards []models.Ward) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type panchayatRepo struct {
	coll *mongo.Collection
}

func NewPanchayatRepo(db *mongo.Database) PanchayatRepository {
	return &panchayatRepo{coll: db.Collection(PanchayatsCollection)}
}

func (r *panchayatRepo) Create(ctx context.Context, p *models.Panchayat) error {
	now := time.Now()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *panchayatRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Panchayat, error) {
	var p models.Panchayat
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *panchayatRepo) List(ctx context.Context, constituencyID *primitive.ObjectID) ([]models.Panchayat, error) {
	filter := bson.M{}
	if constituencyID != nil {
		filter["constituency_id"] = *constituencyID
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.Panchayat
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *panchayatRepo) ExistsByName(ctx context.Context, constituencyID primitive.ObjectID, name string, exclude primitive.ObjectID) (bool, error) {
	return exists(ctx, r.coll, bson.M{"constituency_id": constituencyID, "name": name}, exclude)
}

func (r *panchayatRepo) ExistsByCode(ctx context.Context, code string, exclude primitive.ObjectID) (bool, error) {
	return exists(ctx, r.coll, bson.M{"panchayat_code": code}, exclude)
}

func (r *panchayatRepo) CountByConstituency(ctx context.Context, constituencyID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"constituency_id": constituencyID})
}

func (r *panchayatRepo) Update(ctx context.Context, p *models.Panchayat) error {
	p.UpdatedAt = time.Now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":            p.Name,
		"panchayat_code":  p.Code,
		"constituency_id": p.ConstituencyID,
		"ward_list":       p.WardList,
		"updated_at":      p.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *panchayatRepo) AddWards(ctx context.Context, id primitive.ObjectID, wards []models.Ward) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"ward_list": bson.M{"$each": wards}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *panchayatRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
