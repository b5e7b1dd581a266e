package connection

import (
	"context"
	"errors"
	"fmt"

	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/gateways"

	"go.uber.org/zap"
)

type ConnectionService interface {
	// TestConnection probes the remote service with the given credentials
	// without storing anything.
	TestConnection(ctx context.Context, service common_models.Service, creds gateways.Credentials) (*TestResult, error)
	// StoreConnection tests and, on success, persists the credentials.
	StoreConnection(ctx context.Context, service common_models.Service, creds gateways.Credentials) (*Connection, error)
	GetConnection(ctx context.Context, service common_models.Service) (*Connection, error)
	ListConnections(ctx context.Context) ([]Connection, error)
	Disconnect(ctx context.Context, service common_models.Service) error
}

type ConnectionServiceImpl struct {
	repo     ConnectionRepository
	attio    gateways.AttioGateway
	airtable gateways.AirtableGateway
	logger   *zap.Logger
}

func NewConnectionService(repo ConnectionRepository, attio gateways.AttioGateway, airtable gateways.AirtableGateway, logger *zap.Logger) ConnectionService {
	return &ConnectionServiceImpl{
		repo:     repo,
		attio:    attio,
		airtable: airtable,
		logger:   logger,
	}
}

func (s *ConnectionServiceImpl) TestConnection(ctx context.Context, service common_models.Service, creds gateways.Credentials) (*TestResult, error) {
	switch service {
	case common_models.ServiceAttio:
		return s.testAttio(ctx, creds)
	case common_models.ServiceAirtable:
		return s.testAirtable(ctx, creds)
	default:
		return nil, fmt.Errorf("unknown service: %s", service)
	}
}

func (s *ConnectionServiceImpl) testAttio(ctx context.Context, creds gateways.Credentials) (*TestResult, error) {
	if creds.Token == "" {
		return nil, fmt.Errorf("attio token is required")
	}

	objects, err := s.attio.ListObjects(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("connection test failed: %w", err)
	}

	// If a specific object is provided, verify we can read its records too.
	if creds.ObjectID != "" {
		if _, err := s.attio.QueryRecords(ctx, creds, creds.ObjectID, gateways.RecordQuery{Limit: 1}); err != nil {
			return nil, fmt.Errorf("cannot access object %s: %w", creds.ObjectID, err)
		}
	}

	return &TestResult{Success: true, Collections: len(objects)}, nil
}

func (s *ConnectionServiceImpl) testAirtable(ctx context.Context, creds gateways.Credentials) (*TestResult, error) {
	if creds.Token == "" || creds.BaseID == "" {
		return nil, fmt.Errorf("airtable token and base id are required")
	}

	tables, err := s.airtable.ListTables(ctx, creds)
	if err != nil {
		var apiErr *gateways.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Status {
			case 401:
				return nil, fmt.Errorf("invalid token or insufficient permissions")
			case 404:
				return nil, fmt.Errorf("base not found or access denied")
			}
		}
		return nil, fmt.Errorf("connection test failed: %w", err)
	}

	return &TestResult{Success: true, Collections: len(tables)}, nil
}

func (s *ConnectionServiceImpl) StoreConnection(ctx context.Context, service common_models.Service, creds gateways.Credentials) (*Connection, error) {
	if _, err := s.TestConnection(ctx, service, creds); err != nil {
		return nil, err
	}

	conn := &Connection{
		Service:     service,
		Connected:   true,
		Credentials: creds,
	}
	if err := s.repo.Upsert(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to store %s connection: %w", service, err)
	}

	s.logger.Info("connection stored", zap.String("service", string(service)))
	return conn, nil
}

func (s *ConnectionServiceImpl) GetConnection(ctx context.Context, service common_models.Service) (*Connection, error) {
	return s.repo.Get(ctx, service)
}

func (s *ConnectionServiceImpl) ListConnections(ctx context.Context) ([]Connection, error) {
	return s.repo.List(ctx)
}

func (s *ConnectionServiceImpl) Disconnect(ctx context.Context, service common_models.Service) error {
	if err := s.repo.Delete(ctx, service); err != nil {
		return err
	}
	s.logger.Info("connection removed", zap.String("service", string(service)))
	return nil
}
