package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Constituency struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"name" json:"name"`
	Code       string               `bson:"constituency_code" json:"constituency_code"`
	MLAID      *primitive.ObjectID  `bson:"mla_id,omitempty" json:"mla_id,omitempty"`
	Panchayats []primitive.ObjectID `bson:"panchayats" json:"panchayats"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at" json:"updated_at"`
}

// Ward is owned by its panchayat and never stored on its own.
type Ward struct {
	WardID   string `bson:"ward_id" json:"ward_id" binding:"required,max=50"`
	WardName string `bson:"ward_name" json:"ward_name" binding:"required,max=100"`
}

type Panchayat struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Code           string             `bson:"panchayat_code" json:"panchayat_code"`
	ConstituencyID primitive.ObjectID `bson:"constituency_id" json:"constituency_id"`
	WardList       []Ward             `bson:"ward_list" json:"ward_list"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasWard reports whether wardID is one of the panchayat's wards.
func (p *Panchayat) HasWard(wardID string) bool {
	for _, w := range p.WardList {
		if w.WardID == wardID {
			return true
		}
	}
	return false
}
