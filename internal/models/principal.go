package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role tags the kind of identity a token was issued to.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is the verified caller attached to a request: either User(id) or Admin(id).
type Principal struct {
	Role Role
	ID   primitive.ObjectID
}

func UserPrincipal(id primitive.ObjectID) Principal {
	return Principal{Role: RoleUser, ID: id}
}

func AdminPrincipal(id primitive.ObjectID) Principal {
	return Principal{Role: RoleAdmin, ID: id}
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
func (p Principal) IsUser() bool  { return p.Role == RoleUser }
