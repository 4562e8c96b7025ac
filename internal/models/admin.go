package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminBootstrapKey is stored on every admin document. A unique index on it
// keeps the admins collection at a single record.
const AdminBootstrapKey = "primary"

type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	BootstrapKey string             `bson:"bootstrapKey" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
