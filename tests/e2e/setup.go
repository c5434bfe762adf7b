//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"roomchat/cmd/bootstrap"
	"roomchat/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
)

// Field is one extracted value in the stub model's answer.
type Field struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Turn is what the stub model answers for one user message. Unset fields are sent
// as not mentioned.
type Turn struct {
	Date            Field  `json:"date"`
	StartTime       Field  `json:"start_time"`
	DurationMinutes Field  `json:"duration_minutes"`
	Room            Field  `json:"room"`
	Requester       Field  `json:"requester"`
	Purpose         Field  `json:"purpose"`
	Reply           string `json:"reply"`
}

// Sure is a value stated outright.
func Sure(v string) Field {
	return Field{Value: v, Confidence: 0.95}
}

// ModelStub serves the chat completions endpoint from a queue of scripted turns.
type ModelStub struct {
	mu    sync.Mutex
	turns []Turn
	calls int
}

func (m *ModelStub) Queue(turns ...Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turns...)
}

func (m *ModelStub) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *ModelStub) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	m.calls++
	if len(m.turns) == 0 {
		m.mu.Unlock()
		http.Error(w, "no scripted turn", http.StatusInternalServerError)
		return
	}
	turn := m.turns[0]
	m.turns = m.turns[1:]
	m.mu.Unlock()

	content, err := json.Marshal(turn)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": string(content)}},
		},
	})
}

// SharedSuite boots the whole application once per test with in-memory storage and a
// stubbed model provider.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	Model  *ModelStub
	Config config.Config
}

func (s *SharedSuite) SetupTest() {
	s.Router, s.Model, s.Config = setupE2EEnvironment(s.T())
}

func setupE2EEnvironment(t *testing.T) (*gin.Engine, *ModelStub, config.Config) {
	gin.SetMode(gin.TestMode)

	model := &ModelStub{}
	upstream := httptest.NewServer(model)
	t.Cleanup(upstream.Close)

	cfg := config.NewTestConfig()
	cfg.Extractor.Provider = config.ProviderOpenAI
	cfg.Extractor.BaseURL = upstream.URL + "/v1"
	cfg.Extractor.APIKey = "test-key"

	var router *gin.Engine
	app := fx.New(
		bootstrap.Module(cfg),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start fx app")
	require.NotNil(t, router)

	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := app.Stop(stopCtx); err != nil {
			t.Logf("failed to stop fx app: %v", err)
		}
	})

	return router, model, cfg
}

// NextBusinessDay returns the first weekday after today in loc, formatted as YYYY-MM-DD.
func NextBusinessDay(loc *time.Location) string {
	d := time.Now().In(loc).AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format(time.DateOnly)
}

func SessionURL(id string) string {
	return fmt.Sprintf("/api/sessions/%s", id)
}

func MessagesURL(id string) string {
	return fmt.Sprintf("/api/sessions/%s/messages", id)
}
