package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"lm500_emulator/internal/models"
	"lm500_emulator/internal/service"

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
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockControl struct {
	startErr, stopErr, setErr, getErr error
	started, stopped                  []int
	params                            map[string]string
}

func (m *mockControl) StartFill(_ context.Context, ch int) error {
	m.started = append(m.started, ch)
	return m.startErr
}

func (m *mockControl) StopFill(_ context.Context, ch int) error {
	m.stopped = append(m.stopped, ch)
	return m.stopErr
}

func (m *mockControl) Param(_ context.Context, name string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.params[name], nil
}

func (m *mockControl) SetParam(_ context.Context, name, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.params == nil {
		m.params = map[string]string{}
	}
	m.params[name] = value
	return nil
}

// mockMonitoring returns state, or walks through seq one call at a time and
// then keeps repeating its last entry.
type mockMonitoring struct {
	mu    sync.Mutex
	state models.LevelState
	seq   []models.LevelState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.LevelState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.LevelState{}, m.err
	}
	if len(m.seq) == 0 {
		return m.state, nil
	}
	st := m.seq[0]
	if len(m.seq) > 1 {
		m.seq = m.seq[1:]
	}
	return st, nil
}

type mockEventLog struct {
	resp []models.FillEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.FillEvent, error) {
	m.last = f
	return m.resp, m.err
}

type mockSamples struct {
	resp []models.LevelSample
	err  error
	last service.SampleFilter
}

func (m *mockSamples) List(ctx context.Context, f service.SampleFilter) ([]models.LevelSample, error) {
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, nil, true).InitRoutes()
}

// do performs one request with an optional JSON body and bearer token.
func do(r http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleState() models.LevelState {
	return models.LevelState{
		Identity:  "AMERICAN MAGNETICS INC.,MODEL 500,SIM,1.0",
		FillState: "chan1",
		Units:     "CM",
		Channels: []models.ChannelState{
			{Channel: 1, Level: 4, Filling: true, FillStatus: "10 min"},
			{Channel: 2, Level: 0, FillStatus: "Off"},
		},
		UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func assertCode(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status=%d want %d, body=%s", w.Code, want, w.Body.String())
	}
}
