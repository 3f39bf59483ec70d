package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// EnsureIndexes creates the unique indexes and the panchayat document
// validator. It is safe to call on every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := ensurePanchayatValidator(ctx, db); err != nil {
		return err
	}

	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		UserDetailsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "constituency_id", Value: 1}}},
		},
		ConstituenciesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "constituency_code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "mla_id", Value: 1}}},
		},
		PanchayatsCollection: {
			{Keys: bson.D{{Key: "panchayat_code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "constituency_id", Value: 1}}},
		},
		DepartmentsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)},
		},
		DepartmentEmployeesCollection: {
			{Keys: bson.D{{Key: "department_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		IssuesCollection: {
			{Keys: bson.D{{Key: "constituency_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "reported_by", Value: 1}}},
			{Keys: bson.D{{Key: "department_id", Value: 1}}},
		},
		AISuggestionsCollection: {
			{Keys: bson.D{{Key: "mla_id", Value: 1}, {Key: "month", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// The store only enforces presence/type and the non-empty ward list; the
// remaining invariants live in the services.
var panchayatSchema = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"name", "panchayat_code", "constituency_id", "ward_list"},
		"properties": bson.M{
			"name":            bson.M{"bsonType": "string"},
			"panchayat_code":  bson.M{"bsonType": "string"},
			"constituency_id": bson.M{"bsonType": "objectId"},
			"ward_list": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": bson.A{"ward_id", "ward_name"},
				},
			},
		},
	},
}

func ensurePanchayatValidator(ctx context.Context, db *mongo.Database) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": PanchayatsCollection})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	if len(names) == 0 {
		opts := options.CreateCollection().SetValidator(panchayatSchema)
		if err := db.CreateCollection(ctx, PanchayatsCollection, opts); err != nil {
			return fmt.Errorf("create %s: %w", PanchayatsCollection, err)
		}
		return nil
	}
	cmd := bson.D{
		{Key: "collMod", Value: PanchayatsCollection},
		{Key: "validator", Value: panchayatSchema},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("update %s validator: %w", PanchayatsCollection, err)
	}
	return nil
}
