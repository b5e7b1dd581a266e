package mapping

import (
	"time"

	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/features/transform"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldMapping pairs one source field with one destination field. Either
// side may be nil while the operator is still editing; such mappings are
// kept but skipped by the sync engine.
type FieldMapping struct {
	ID              string                         `json:"id" bson:"id"`
	SourceField     *common_models.FieldDescriptor `json:"sourceField" bson:"source_field,omitempty"`
	DestField       *common_models.FieldDescriptor `json:"destField" bson:"dest_field,omitempty"`
	Confidence      float64                        `json:"confidence" bson:"confidence"`
	Transformations []transform.Spec               `json:"transformations,omitempty" bson:"transformations,omitempty"`
	Enabled         bool                           `json:"enabled" bson:"enabled"`
}

// NewFieldMapping returns an empty mapping for manual editing.
func NewFieldMapping() FieldMapping {
	return FieldMapping{
		ID:      uuid.NewString(),
		Enabled: true,
	}
}

// Complete reports whether both sides are selected.
func (m FieldMapping) Complete() bool {
	return m.SourceField != nil && m.DestField != nil
}

// MappingSet is a persisted group of mappings between one source and one
// destination collection.
type MappingSet struct {
	ID                 primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	Name               string                `json:"name" bson:"name"`
	SourceService      common_models.Service `json:"sourceService" bson:"source_service"`
	DestService        common_models.Service `json:"destService" bson:"dest_service"`
	SourceCollectionID string                `json:"sourceCollectionId" bson:"source_collection_id"`
	DestCollectionID   string                `json:"destCollectionId" bson:"dest_collection_id"`
	Mappings           []FieldMapping        `json:"mappings" bson:"mappings"`
	CreatedAt          time.Time             `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time             `json:"updatedAt" bson:"updated_at"`
}

// AutoMapResult carries the proposed mappings plus the source fields no
// destination candidate was found for.
type AutoMapResult struct {
	Mappings []FieldMapping                  `json:"mappings"`
	Unmapped []common_models.FieldDescriptor `json:"unmapped"`
}
