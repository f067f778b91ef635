package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingRepo "crewbook/database/repository/booking"
	participantRepo "crewbook/database/repository/participant"
	"crewbook/handlers"
	"crewbook/models"
	"crewbook/routes"
	"crewbook/services/booking"
	"crewbook/services/cache"
	"crewbook/services/events"
	"crewbook/utils"
)

type server struct {
	engine *gin.Engine
	tokens *utils.TokenValidator
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	participants := participantRepo.NewMemoryParticipantRepo()
	participants.Add(models.Participant{ID: "planner-1", UserID: "u-planner", Role: models.RolePlanner})
	participants.Add(models.Participant{ID: "pro-x", UserID: "u-pro", Role: models.RoleProfessional})

	store := cache.New(nil, cache.Options{}, logger)
	t.Cleanup(store.Close)
	bus := events.NewBus(time.Second, logger)

	svc := booking.NewService(bookingRepo.NewMemoryBookingRepo(), participants, store, bus, booking.Options{}, logger)
	svc.RegisterSubscribers(bus, nil, nil, 0)

	tokens, err := utils.NewTokenValidator("handler-secret")
	require.NoError(t, err)
	monitor := utils.NewHealthMonitor(nil, time.Minute, logger)

	engine := gin.New()
	engine.Use(utils.ErrorHandler(logger))
	routes.RegisterRoutes(engine, handlers.NewHandlerBundle(tokens, handlers.NewBookingHandler(svc), handlers.HealthHandler(monitor, store)))
	return &server{engine: engine, tokens: tokens}
}

func (s *server) do(t *testing.T, method, path, userID, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := s.tokens.GenerateToken(userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("role", role)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestBookingEndpoints(t *testing.T) {
	s := newServer(t)
	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	create := map[string]any{
		"professionalId": "pro-x",
		"eventPlannerId": "planner-1",
		"eventId":        "gala",
		"startDate":      start,
		"endDate":        start.Add(2 * time.Hour),
		"rate":           450,
		"currency":       "USD",
	}

	w := s.do(t, http.MethodPost, "/api/bookings", "u-planner", "PLANNER", create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Booking](t, w)
	assert.Equal(t, models.StatusPending, created.Status)

	w = s.do(t, http.MethodGet, "/api/bookings/"+created.ID, "u-pro", "PROFESSIONAL", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPatch, "/api/bookings/"+created.ID+"/status", "u-planner", "PLANNER", map[string]any{"status": "CONFIRMED"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPatch, "/api/bookings/"+created.ID+"/terms", "u-pro", "PROFESSIONAL", map[string]any{"rate": 500, "currency": "usd"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 500.0, decode[models.Booking](t, w).Rate)

	w = s.do(t, http.MethodPatch, "/api/bookings/"+created.ID+"/status", "u-pro", "PROFESSIONAL", map[string]any{"status": "CONFIRMED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusConfirmed, decode[models.Booking](t, w).Status)

	w = s.do(t, http.MethodPatch, "/api/bookings/"+created.ID+"/terms", "u-pro", "PROFESSIONAL", map[string]any{"rate": 10, "currency": "USD"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	create["eventId"] = "launch"
	create["startDate"] = start.Add(time.Hour)
	create["endDate"] = start.Add(3 * time.Hour)
	w = s.do(t, http.MethodPost, "/api/bookings", "u-planner", "PLANNER", create)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/bookings?professionalId=pro-x&status=CONFIRMED", "u-pro", "PROFESSIONAL", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[struct {
		Bookings []models.Booking `json:"bookings"`
		Count    int              `json:"count"`
	}](t, w)
	assert.Equal(t, 1, listed.Count)
}

func TestBookingEndpoints_Errors(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/bookings/missing", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/bookings/missing", "u-planner", "PLANNER", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/bookings", "u-pro", "PROFESSIONAL", map[string]any{
		"professionalId": "pro-x", "eventPlannerId": "planner-1", "eventId": "gala",
		"startDate": time.Now().Add(time.Hour), "endDate": time.Now().Add(2 * time.Hour), "currency": "USD",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/bookings", "u-planner", "PLANNER", map[string]any{"eventPlannerId": "planner-1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[struct {
		Details map[string][]string `json:"details"`
	}](t, w)
	assert.Contains(t, body.Details, "professionalId")

	w = s.do(t, http.MethodGet, "/api/bookings?status=CONFIRMED", "u-pro", "PROFESSIONAL", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/health", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "cache")
}
