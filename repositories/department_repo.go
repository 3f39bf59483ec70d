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

type DepartmentRepository interface {
	Create(ctx context.Context, d *models.Department) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Department, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Department, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*models.Department, error)
	GetByHead(ctx context.Context, headID primitive.ObjectID) (*models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
	Update(ctx context.Context, d *models.Department) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type departmentRepo struct {
	coll *mongo.Collection
}

func NewDepartmentRepo(db *mongo.Database) DepartmentRepository {
	return &departmentRepo{coll: db.Collection(DepartmentsCollection)}
}

func (r *departmentRepo) Create(ctx context.Context, d *models.Department) error {
	now := time.Now()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	d.CreatedAt, d.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, d)
	return translate(err)
}

func (r *departmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Department, error) {
	var d models.Department
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *departmentRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Department, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *departmentRepo) GetByName(ctx context.Context, name string) (*models.Department, error) {
	var d models.Department
	opts := options.FindOne().SetCollation(caseInsensitive)
	if err := r.coll.FindOne(ctx, bson.M{"name": name}, opts).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *departmentRepo) GetByHead(ctx context.Context, headID primitive.ObjectID) (*models.Department, error) {
	var d models.Department
	if err := r.coll.FindOne(ctx, bson.M{"head_id": headID}).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *departmentRepo) List(ctx context.Context) ([]models.Department, error) {
	return r.find(ctx, bson.M{})
}

func (r *departmentRepo) find(ctx context.Context, filter bson.M) ([]models.Department, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.Department
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *departmentRepo) Update(ctx context.Context, d *models.Department) error {
	d.UpdatedAt = time.Now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": d.ID}, bson.M{"$set": bson.M{
		"name":        d.Name,
		"description": d.Description,
		"head_id":     d.HeadID,
		"updated_at":  d.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *departmentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
