package handlers

import (
	"context"
	"net/http"
	"time"

	"windhager_gateway/internal/models"
	"windhager_gateway/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockClimate struct {
	states    []service.ClimateState
	statesErr error

	setModeErr   error
	setTempErr   error
	setOffsetErr error

	lastDeviceID string
	lastMode     string
	lastTemp     float64
	lastDuration int
	lastOffset   float64
}

func (m *mockClimate) States(ctx context.Context) ([]service.ClimateState, error) {
	return m.states, m.statesErr
}
func (m *mockClimate) SetMode(ctx context.Context, deviceID, mode string) error {
	m.lastDeviceID = deviceID
	m.lastMode = mode
	return m.setModeErr
}
func (m *mockClimate) SetTemperature(ctx context.Context, deviceID string, temp float64, durationMinutes int) error {
	m.lastDeviceID = deviceID
	m.lastTemp = temp
	m.lastDuration = durationMinutes
	return m.setTempErr
}
func (m *mockClimate) SetComfortOffset(ctx context.Context, deviceID string, offset float64) error {
	m.lastDeviceID = deviceID
	m.lastOffset = offset
	return m.setOffsetErr
}

type mockMonitoring struct {
	snap       *models.Snapshot
	ok         bool
	ecoMinutes int
	setEcoErr  error

	lastSetEco int
}

func (m *mockMonitoring) Snapshot() (*models.Snapshot, bool) {
	return m.snap, m.ok
}
func (m *mockMonitoring) Devices() ([]models.Device, bool) {
	if !m.ok {
		return nil, false
	}
	return m.snap.Devices, true
}
func (m *mockMonitoring) EcoDefaultDuration() int { return m.ecoMinutes }
func (m *mockMonitoring) SetEcoDefaultDuration(minutes int) error {
	if m.setEcoErr != nil {
		return m.setEcoErr
	}
	m.lastSetEco = minutes
	m.ecoMinutes = minutes
	return nil
}

type mockPoller struct{}

func (m *mockPoller) Run(ctx context.Context, tick time.Duration) {}

type mockCommandLog struct {
	resp       []models.CommandEvent
	err        error
	lastFilter service.CommandFilter
}

func (m *mockCommandLog) List(ctx context.Context, f service.CommandFilter) ([]models.CommandEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
