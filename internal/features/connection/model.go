package connection

import (
	"time"

	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/gateways"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Connection is one stored service connection. Created on a successful
// connectivity test, destroyed on disconnect.
type Connection struct {
	ID          primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	Service     common_models.Service `json:"service" bson:"service"`
	Connected   bool                  `json:"connected" bson:"connected"`
	Credentials gateways.Credentials  `json:"credentials" bson:"credentials"`
	ConnectedAt time.Time             `json:"connected_at" bson:"connected_at"`
}

// TestResult reports what a connectivity probe could see.
type TestResult struct {
	Success     bool   `json:"success"`
	Collections int    `json:"collections"`
	Detail      string `json:"detail,omitempty"`
}
