package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IANDYI/maternal-care-service/internal/adapters/handler"
	"github.com/IANDYI/maternal-care-service/internal/adapters/middleware"
	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

type stubAuthenticator struct {
	tokens map[string]middleware.Principal
}

func (s stubAuthenticator) Authenticate(token string) (middleware.Principal, error) {
	p, ok := s.tokens[token]
	if !ok {
		return middleware.Principal{}, errors.New("invalid token")
	}
	return p, nil
}

type recordingAttacher struct {
	userID string
	role   string
	calls  int
}

func (a *recordingAttacher) Attach(w http.ResponseWriter, r *http.Request, userID string, role string) error {
	a.calls++
	a.userID = userID
	a.role = role
	return nil
}

func TestWebSocketHandler_AttachesAuthenticatedClient(t *testing.T) {
	auth := stubAuthenticator{tokens: map[string]middleware.Principal{
		"good": {UserID: "clinician-1", Role: domain.RoleAdmin},
	}}
	attacher := &recordingAttacher{}
	h := handler.NewWebSocketHandler(attacher, auth, quietLogger())

	h.HandleWebSocket(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws?token=good", nil))

	assert.Equal(t, 1, attacher.calls)
	assert.Equal(t, "clinician-1", attacher.userID)
	assert.Equal(t, domain.RoleAdmin, attacher.role)
}

func TestWebSocketHandler_Rejects(t *testing.T) {
	auth := stubAuthenticator{tokens: map[string]middleware.Principal{}}

	for _, target := range []string{"/ws", "/ws?token=bad"} {
		attacher := &recordingAttacher{}
		h := handler.NewWebSocketHandler(attacher, auth, quietLogger())
		w := httptest.NewRecorder()

		h.HandleWebSocket(w, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
		assert.Zero(t, attacher.calls, target)
	}
}
