package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Role enum. Officers come in three classes with descending scope:
// class_a is city-wide, class_b is department-scoped, class_c is ward-scoped.
type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleContractor Role = "contractor"
	RoleClassC     Role = "class_c"
	RoleClassB     Role = "class_b"
	RoleClassA     Role = "class_a"
)

// IsOfficer reports whether the role is a municipal officer class.
func (r Role) IsOfficer() bool {
	return r == RoleClassA || r == RoleClassB || r == RoleClassC
}

// IsValidRole reports whether the string is one of the defined roles.
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleCitizen, RoleContractor, RoleClassC, RoleClassB, RoleClassA:
		return true
	}
	return false
}

// Contractor approval states
const (
	ContractorPending   = "pending"
	ContractorApproved  = "approved"
	ContractorSuspended = "suspended"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`

	Role Role `bson:"role" json:"role"`

	// Scope attributes: ward for class_c officers, department for class_b.
	// Class A officers carry neither and operate city-wide.
	WardID     string `bson:"ward_id,omitempty" json:"ward_id,omitempty"`
	Department string `bson:"department,omitempty" json:"department,omitempty"`

	// ApprovalStatus applies to contractors only.
	ApprovalStatus string `bson:"approval_status,omitempty" json:"approval_status,omitempty"`

	Active bool `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}
