package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for every stored password.
const PasswordCost = 12

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password,omitempty" json:"-"`
	PhoneNumber string             `bson:"phone_number" json:"phone_number"`
	Role        Role               `bson:"role" json:"role"`
	IsVerified  bool               `bson:"is_verified" json:"is_verified"`
	AccessToken string             `bson:"access_token,omitempty" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), PasswordCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ComparePassword is false for accounts created through OAuth, which have no
// password hash.
func (u *User) ComparePassword(candidate string) bool {
	if u.Password == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}

// UserDetails places a user in the constituency → panchayat → ward hierarchy.
type UserDetails struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	ConstituencyID primitive.ObjectID `bson:"constituency_id" json:"constituency_id"`
	PanchayatID    primitive.ObjectID `bson:"panchayat_id" json:"panchayat_id"`
	WardNo         string             `bson:"ward_no" json:"ward_no"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// Complete reports whether every hierarchy reference is filled in.
func (d *UserDetails) Complete() bool {
	return d != nil && !d.ConstituencyID.IsZero() && !d.PanchayatID.IsZero() && d.WardNo != ""
}
