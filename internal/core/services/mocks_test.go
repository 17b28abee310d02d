package services_test

import (
	"context"
	"io"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// MockSymptomRepository is a mock implementation of ports.SymptomRepository
type MockSymptomRepository struct {
	mock.Mock
}

func (m *MockSymptomRepository) CreateEntry(ctx context.Context, entry *domain.SymptomEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSymptomRepository) GetLatestEntry(ctx context.Context, userID uuid.UUID) (*domain.SymptomEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SymptomEntry), args.Error(1)
}

func (m *MockSymptomRepository) ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.SymptomEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SymptomEntry), args.Error(1)
}

// MockContactRepository is a mock implementation of ports.ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) CreateContact(ctx context.Context, contact *domain.EmergencyContact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) ListContacts(ctx context.Context, userID uuid.UUID) ([]*domain.EmergencyContact, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EmergencyContact), args.Error(1)
}

func (m *MockContactRepository) DeleteContact(ctx context.Context, contactID uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, contactID, userID)
	return args.Error(0)
}

// MockDoctorRepository is a mock implementation of ports.DoctorRepository
type MockDoctorRepository struct {
	mock.Mock
}

func (m *MockDoctorRepository) ListDoctors(ctx context.Context, query string) ([]*domain.Doctor, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) UpsertDoctor(ctx context.Context, doctor *domain.Doctor) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

// MockAlertPublisher is a mock implementation of ports.AlertPublisher
type MockAlertPublisher struct {
	mock.Mock
}

func (m *MockAlertPublisher) PublishRiskAlert(ctx context.Context, alert *domain.RiskAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertPublisher) PublishFamilyAlert(ctx context.Context, alert *domain.FamilyAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
