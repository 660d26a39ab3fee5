package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin      = "admin"
	RoleUser       = "user"
	RoleSuperAdmin = "super_admin"
)

// User represents the application user account.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	PasswordHash    string             `bson:"password" json:"-"`
	ContactNumber   string             `bson:"contact_number,omitempty" json:"contact_number,omitempty"`
	Role            string             `bson:"role" json:"role"`
	IsEmailVerified bool               `bson:"is_email_verified" json:"is_email_verified"`
	IsDeleted       bool               `bson:"is_deleted" json:"is_deleted"`
	LastLoginAt     *time.Time         `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
