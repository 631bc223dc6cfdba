package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account that can own documents and sign them. PasswordHash is
// the bcrypt hash and never leaves the server.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	Role         string    `json:"role" bson:"role"`
	SectorID     string    `json:"sectorId,omitempty" bson:"sectorId,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
