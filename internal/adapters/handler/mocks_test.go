package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/IANDYI/maternal-care-service/internal/adapters/middleware"
	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// withCaller attaches an authenticated caller to the request
func withCaller(req *http.Request, userID uuid.UUID, role string) *http.Request {
	principal := middleware.Principal{UserID: userID.String(), Role: role}
	return req.WithContext(middleware.WithPrincipal(req.Context(), principal, ""))
}

// MockSymptomService is a mock implementation of SymptomService
type MockSymptomService struct {
	mock.Mock
}

func (m *MockSymptomService) SubmitSymptoms(ctx context.Context, userID uuid.UUID, form map[string]json.RawMessage) (*domain.SymptomEntry, domain.RiskAnalysis, error) {
	args := m.Called(ctx, userID, form)
	if args.Get(0) == nil {
		return nil, domain.RiskAnalysis{}, args.Error(2)
	}
	return args.Get(0).(*domain.SymptomEntry), args.Get(1).(domain.RiskAnalysis), args.Error(2)
}

func (m *MockSymptomService) GetLatest(ctx context.Context, requesterID uuid.UUID, isAdmin bool, targetUserID uuid.UUID) (*domain.SymptomEntry, error) {
	args := m.Called(ctx, requesterID, isAdmin, targetUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SymptomEntry), args.Error(1)
}

func (m *MockSymptomService) ListEntries(ctx context.Context, requesterID uuid.UUID, isAdmin bool, targetUserID uuid.UUID, limit int) ([]*domain.SymptomEntry, error) {
	args := m.Called(ctx, requesterID, isAdmin, targetUserID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SymptomEntry), args.Error(1)
}

func (m *MockSymptomService) Analyze(form map[string]json.RawMessage) domain.RiskAnalysis {
	args := m.Called(form)
	return args.Get(0).(domain.RiskAnalysis)
}

// MockDietService is a mock implementation of DietService
type MockDietService struct {
	mock.Mock
}

func (m *MockDietService) PersonalizedPlan(ctx context.Context, userID uuid.UUID) (*domain.DietPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DietPlan), args.Error(1)
}

// MockDoctorService is a mock implementation of DoctorService
type MockDoctorService struct {
	mock.Mock
}

func (m *MockDoctorService) SearchDoctors(ctx context.Context, query string) ([]*domain.Doctor, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Doctor), args.Error(1)
}

// MockContactService is a mock implementation of ContactService
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) AddContact(ctx context.Context, userID uuid.UUID, req ports.CreateContactRequest) (*domain.EmergencyContact, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmergencyContact), args.Error(1)
}

func (m *MockContactService) ListContacts(ctx context.Context, userID uuid.UUID) ([]*domain.EmergencyContact, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EmergencyContact), args.Error(1)
}

func (m *MockContactService) DeleteContact(ctx context.Context, userID uuid.UUID, contactID uuid.UUID) error {
	args := m.Called(ctx, userID, contactID)
	return args.Error(0)
}

// MockFamilyAlertService is a mock implementation of FamilyAlertService
type MockFamilyAlertService struct {
	mock.Mock
}

func (m *MockFamilyAlertService) SendAlert(ctx context.Context, userID uuid.UUID, alertType domain.AlertType, message string) (*domain.FamilyAlert, error) {
	args := m.Called(ctx, userID, alertType, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FamilyAlert), args.Error(1)
}
