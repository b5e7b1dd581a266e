package mapping

import (
	"context"
	"fmt"

	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/features/schema"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AutoMapRequest names the two collections to pair fields between. Strict
// selects the confirm-grade matcher over the loose name matcher.
type AutoMapRequest struct {
	SourceService      common_models.Service `json:"sourceService"`
	DestService        common_models.Service `json:"destService"`
	SourceCollectionID string                `json:"sourceCollectionId"`
	DestCollectionID   string                `json:"destCollectionId"`
	Strict             bool                  `json:"strict"`
	Name               string                `json:"name"`
	Save               bool                  `json:"save"`
}

type MappingService interface {
	AutoMap(ctx context.Context, req AutoMapRequest) (*MappingSet, error)
	CreateSet(ctx context.Context, set *MappingSet) error
	GetSet(ctx context.Context, id primitive.ObjectID) (*MappingSet, error)
	ListSets(ctx context.Context) ([]MappingSet, error)
	UpdateSet(ctx context.Context, set *MappingSet) error
	DeleteSet(ctx context.Context, id primitive.ObjectID) error
	AddMapping(ctx context.Context, setID primitive.ObjectID) (*MappingSet, error)
	RemoveMapping(ctx context.Context, setID primitive.ObjectID, mappingID string) (*MappingSet, error)
	UpdateMapping(ctx context.Context, setID primitive.ObjectID, mappingID string, updated FieldMapping) (*MappingSet, error)
}

type MappingServiceImpl struct {
	repo   MappingRepository
	schema schema.SchemaService
	logger *zap.Logger
}

func NewMappingService(repo MappingRepository, schemaService schema.SchemaService, logger *zap.Logger) MappingService {
	return &MappingServiceImpl{
		repo:   repo,
		schema: schemaService,
		logger: logger,
	}
}

// AutoMap fetches both field schemas and proposes a mapping set. The result
// is persisted only when req.Save is set; otherwise the caller reviews it
// first and stores it through CreateSet.
func (s *MappingServiceImpl) AutoMap(ctx context.Context, req AutoMapRequest) (*MappingSet, error) {
	if !req.SourceService.Valid() || !req.DestService.Valid() {
		return nil, fmt.Errorf("unknown service in automap request")
	}
	if req.SourceCollectionID == "" || req.DestCollectionID == "" {
		return nil, fmt.Errorf("source and destination collections are required")
	}

	sourceFields, err := s.schema.ListFields(ctx, req.SourceService, req.SourceCollectionID)
	if err != nil {
		return nil, fmt.Errorf("fetch source fields: %w", err)
	}
	destFields, err := s.schema.ListFields(ctx, req.DestService, req.DestCollectionID)
	if err != nil {
		return nil, fmt.Errorf("fetch destination fields: %w", err)
	}

	var result AutoMapResult
	if req.Strict {
		result = StrictMatch(sourceFields, destFields)
	} else {
		result = AutoMap(sourceFields, destFields)
	}

	s.logger.Info("auto-mapped fields",
		zap.Int("mapped", len(result.Mappings)),
		zap.Int("unmapped", len(result.Unmapped)),
		zap.Bool("strict", req.Strict))

	set := &MappingSet{
		Name:               req.Name,
		SourceService:      req.SourceService,
		DestService:        req.DestService,
		SourceCollectionID: req.SourceCollectionID,
		DestCollectionID:   req.DestCollectionID,
		Mappings:           result.Mappings,
	}
	if set.Name == "" {
		set.Name = fmt.Sprintf("%s → %s", req.SourceCollectionID, req.DestCollectionID)
	}

	if req.Save {
		if err := s.repo.Create(ctx, set); err != nil {
			return nil, fmt.Errorf("save mapping set: %w", err)
		}
	}
	return set, nil
}

func (s *MappingServiceImpl) CreateSet(ctx context.Context, set *MappingSet) error {
	for i := range set.Mappings {
		if set.Mappings[i].ID == "" {
			set.Mappings[i] = withNewID(set.Mappings[i])
		}
	}
	return s.repo.Create(ctx, set)
}

func (s *MappingServiceImpl) GetSet(ctx context.Context, id primitive.ObjectID) (*MappingSet, error) {
	return s.repo.Get(ctx, id)
}

func (s *MappingServiceImpl) ListSets(ctx context.Context) ([]MappingSet, error) {
	return s.repo.List(ctx)
}

func (s *MappingServiceImpl) UpdateSet(ctx context.Context, set *MappingSet) error {
	return s.repo.Update(ctx, set)
}

func (s *MappingServiceImpl) DeleteSet(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// AddMapping appends an empty mapping row for manual editing.
func (s *MappingServiceImpl) AddMapping(ctx context.Context, setID primitive.ObjectID) (*MappingSet, error) {
	set, err := s.mustGet(ctx, setID)
	if err != nil {
		return nil, err
	}
	set.Mappings = append(set.Mappings, NewFieldMapping())
	if err := s.repo.Update(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *MappingServiceImpl) RemoveMapping(ctx context.Context, setID primitive.ObjectID, mappingID string) (*MappingSet, error) {
	set, err := s.mustGet(ctx, setID)
	if err != nil {
		return nil, err
	}
	kept := set.Mappings[:0]
	for _, m := range set.Mappings {
		if m.ID != mappingID {
			kept = append(kept, m)
		}
	}
	set.Mappings = kept
	if err := s.repo.Update(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *MappingServiceImpl) UpdateMapping(ctx context.Context, setID primitive.ObjectID, mappingID string, updated FieldMapping) (*MappingSet, error) {
	set, err := s.mustGet(ctx, setID)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range set.Mappings {
		if set.Mappings[i].ID == mappingID {
			updated.ID = mappingID
			set.Mappings[i] = updated
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("mapping %s not found in set", mappingID)
	}
	if err := s.repo.Update(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *MappingServiceImpl) mustGet(ctx context.Context, id primitive.ObjectID) (*MappingSet, error) {
	set, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("mapping set %s not found", id.Hex())
	}
	return set, nil
}

func withNewID(m FieldMapping) FieldMapping {
	fresh := NewFieldMapping()
	m.ID = fresh.ID
	return m
}
