package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Department struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	HeadID      primitive.ObjectID `bson:"head_id" json:"head_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// DepartmentEmployee links a dept_staff user to the one department they work for.
type DepartmentEmployee struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	DepartmentID primitive.ObjectID `bson:"department_id" json:"department_id"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// DepartmentNames is the fixed roster the classifier chooses from.
var DepartmentNames = []string{
	"Public Works",
	"Water Supply",
	"Electricity",
	"Sanitation",
	"Health",
	"Education",
	"Transport",
	"Revenue",
}
