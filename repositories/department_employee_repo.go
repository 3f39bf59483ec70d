package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"civictrack-be/models"
)

type DepartmentEmployeeRepository interface {
	Create(ctx context.Context, e *models.DepartmentEmployee) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.DepartmentEmployee, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.DepartmentEmployee, error)
	ListByDepartment(ctx context.Context, departmentID primitive.ObjectID) ([]models.DepartmentEmployee, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByDepartment(ctx context.Context, departmentID primitive.ObjectID) (int64, error)
}

type departmentEmployeeRepo struct {
	coll *mongo.Collection
}

func NewDepartmentEmployeeRepo(db *mongo.Database) DepartmentEmployeeRepository {
	return &departmentEmployeeRepo{coll: db.Collection(DepartmentEmployeesCollection)}
}

func (r *departmentEmployeeRepo) Create(ctx context.Context, e *models.DepartmentEmployee) error {
	now := time.Now()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	e.CreatedAt, e.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, e)
	return translate(err)
}

func (r *departmentEmployeeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DepartmentEmployee, error) {
	var e models.DepartmentEmployee
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *departmentEmployeeRepo) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.DepartmentEmployee, error) {
	var e models.DepartmentEmployee
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&e); err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *departmentEmployeeRepo) ListByDepartment(ctx context.Context, departmentID primitive.ObjectID) ([]models.DepartmentEmployee, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"department_id": departmentID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.DepartmentEmployee
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *departmentEmployeeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *departmentEmployeeRepo) DeleteByDepartment(ctx context.Context, departmentID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"department_id": departmentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
