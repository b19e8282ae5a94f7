package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tracking-bot/internal/core/cache"
	"tracking-bot/internal/features/conversation/service"
	trackingdomain "tracking-bot/internal/features/tracking/domain"
	trackingservice "tracking-bot/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullMessenger struct{}

func (nullMessenger) Send(_ context.Context, _, _, _ string) error { return nil }

type memStore struct {
	mu   sync.Mutex
	data map[string][]trackingdomain.TrackedShipment
}

func (m *memStore) Load(_ context.Context) (map[string][]trackingdomain.TrackedShipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string][]trackingdomain.TrackedShipment, len(m.data))
	for k, v := range m.data {
		copied[k] = append([]trackingdomain.TrackedShipment(nil), v...)
	}
	return copied, nil
}

func (m *memStore) Save(_ context.Context, data map[string][]trackingdomain.TrackedShipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

type stubProvider struct{}

func (stubProvider) Create(_ context.Context, _, _ string) error { return nil }

func (stubProvider) Get(_ context.Context, _, _ string) (*trackingdomain.RawItem, error) {
	return &trackingdomain.RawItem{Status: "transit"}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *trackingservice.Registry) {
	t.Helper()

	registry := trackingservice.NewRegistry(&memStore{data: map[string][]trackingdomain.TrackedShipment{}})
	statuses := trackingservice.NewStatusService(stubProvider{}, cache.NewMemoryAdapter(), time.Minute)
	sessions := service.NewSessionManager(nullMessenger{}, registry, statuses, time.Minute, "!register")
	dispatcher := service.NewDispatcher("!", sessions, registry, statuses, nullMessenger{})

	h := NewMessageHandler(dispatcher, registry)

	app := fiber.New()
	app.Use(requestid.New(requestid.Config{Header: "X-Ray-ID"}))
	app.Post("/messages", h.HandleMessage)
	app.Get("/users/:id/trackings", h.ListTrackings)
	return app, registry
}

func postMessage(t *testing.T, app *fiber.App, body any) (int, []byte) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// TestHandleMessage_Accepted verifies a valid event is accepted.
func TestHandleMessage_Accepted(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := postMessage(t, app, map[string]string{
		"user_id":    "user-1",
		"channel_id": "dm-1",
		"text":       "!register",
	})
	assert.Equal(t, fiber.StatusAccepted, status)
}

// TestHandleMessage_MissingUserID verifies the 400 with a Ray ID.
func TestHandleMessage_MissingUserID(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := postMessage(t, app, map[string]string{
		"channel_id": "dm-1",
		"text":       "!register",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "user_id is required", errResp.Message)
	assert.NotEmpty(t, errResp.RayID)
}

// TestHandleMessage_InvalidBody verifies undecodable bodies are rejected.
func TestHandleMessage_InvalidBody(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/messages", bytes.NewReader([]byte("{broken")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// TestListTrackings verifies the registered shipments are returned.
func TestListTrackings(t *testing.T) {
	app, registry := newTestApp(t)

	_, err := registry.Add(context.Background(), "user-1", "1Z999AA10123456784", "ups")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/users/user-1/trackings", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var shipments []trackingdomain.TrackedShipment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&shipments))
	require.Len(t, shipments, 1)
	assert.Equal(t, "ups", shipments[0].Carrier)
}

// TestListTrackings_UnknownUser verifies an empty list, not an error.
func TestListTrackings_UnknownUser(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/users/nobody/trackings", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var shipments []trackingdomain.TrackedShipment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&shipments))
	assert.Empty(t, shipments)
}
