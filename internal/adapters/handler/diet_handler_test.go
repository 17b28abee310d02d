package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/adapters/handler"
	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/rules"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDietHandler_Personalized(t *testing.T) {
	mockService := new(MockDietService)
	h := handler.NewDietHandler(mockService, quietLogger())

	userID := uuid.New()
	snapshot := domain.SymptomSnapshot{
		FastingSugar: domain.Value(100),
		PCOS:         true,
	}
	plan := &domain.DietPlan{
		EntryID:         uuid.New(),
		SubmittedAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Recommendations: rules.Evaluate(snapshot),
	}
	mockService.On("PersonalizedPlan", mock.Anything, userID).Return(plan, nil)

	req := httptest.NewRequest(http.MethodGet, "/diet-plan/personalized", nil)
	req = withCaller(req, userID, domain.RolePatient)
	w := httptest.NewRecorder()

	h.Personalized(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got domain.DietPlan
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, domain.ConditionGDM, got.Recommendations[0].Condition)
	assert.Len(t, got.Recommendations[0].Tips, 3)
	assert.True(t, plan.SubmittedAt.Equal(got.SubmittedAt))
}

func TestDietHandler_Personalized_NoRecommendations(t *testing.T) {
	mockService := new(MockDietService)
	h := handler.NewDietHandler(mockService, quietLogger())

	userID := uuid.New()
	plan := &domain.DietPlan{EntryID: uuid.New(), Recommendations: rules.Evaluate(domain.SymptomSnapshot{})}
	mockService.On("PersonalizedPlan", mock.Anything, userID).Return(plan, nil)

	req := httptest.NewRequest(http.MethodGet, "/diet-plan/personalized", nil)
	req = withCaller(req, userID, domain.RolePatient)
	w := httptest.NewRecorder()

	h.Personalized(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.JSONEq(t, `[]`, string(resp["recommendations"]))
}

func TestDietHandler_Personalized_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"no symptom data", fmt.Errorf("failed to load latest symptom entry: %w", domain.ErrNoSymptomData), http.StatusNotFound, `{"error": "no symptom data found"}`},
		{"database down", errors.New("circuit breaker is open"), http.StatusInternalServerError, `{"error": "internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDietService)
			h := handler.NewDietHandler(mockService, quietLogger())
			userID := uuid.New()
			mockService.On("PersonalizedPlan", mock.Anything, userID).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodGet, "/diet-plan/personalized", nil)
			req = withCaller(req, userID, domain.RolePatient)
			w := httptest.NewRecorder()

			h.Personalized(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestDietHandler_Personalized_Unauthorized(t *testing.T) {
	mockService := new(MockDietService)
	h := handler.NewDietHandler(mockService, quietLogger())

	w := httptest.NewRecorder()
	h.Personalized(w, httptest.NewRequest(http.MethodGet, "/diet-plan/personalized", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "PersonalizedPlan")
}
