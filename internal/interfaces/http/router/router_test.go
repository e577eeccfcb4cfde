package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appintegration "github.com/wozzarvl/InterfazInAction/internal/application/integration"
	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/config"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence/dynsql"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/handler"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMount(t *testing.T) {
	engine := gin.New()
	tagged := RouteGroup{
		Prefix: "/test",
		Middleware: []gin.HandlerFunc{func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		}},
	}.
		Get("/items", func(c *gin.Context) { c.String(http.StatusOK, "items") }).
		Post("/items", func(c *gin.Context) { c.String(http.StatusCreated, "created") })
	plain := RouteGroup{Prefix: "/plain"}.
		Get("", func(c *gin.Context) { c.String(http.StatusOK, "plain") })

	api := Mount(engine, "v2", tagged, plain)
	assert.Equal(t, "/api/v2", api.BasePath())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/items", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v2/test/items", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/plain", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Test-Middleware"))
}

func TestRouteGroup_AppendDoesNotShareRoutes(t *testing.T) {
	base := RouteGroup{Prefix: "/x"}.Get("/a", func(*gin.Context) {})
	withB := base.Post("/b", func(*gin.Context) {})

	assert.Len(t, base.Routes, 1)
	require.Len(t, withB.Routes, 2)
	assert.Equal(t, http.MethodPost, withB.Routes[1].Method)
}

const itemsDDL = `CREATE TABLE item (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL,
	description TEXT
)`

// newTestEngine serves the real services over an in-memory sqlite database
func newTestEngine(t *testing.T, maxBodySize int64) *gin.Engine {
	t.Helper()

	db, err := persistence.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, db.MigrateConfiguration(ctx))
	require.NoError(t, db.DB.Exec(itemsDDL).Error)

	repo := persistence.NewGormProcessRepository(db.DB)
	require.NoError(t, repo.Save(ctx, &integration.IntegrationProcess{
		ProcessName:   "ITEM",
		InterfaceName: "ITEMS",
		TargetTable:   "item",
		XmlIterator:   "//Item",
		XmlTemplate:   "",
		Fields: []integration.IntegrationField{
			{XmlPath: "Code", DbColumn: "code", IsKey: true},
			{XmlPath: "Text", DbColumn: "description"},
		},
	}))
	require.NoError(t, repo.Save(ctx, &integration.IntegrationProcess{
		ProcessName:   "ITEM_OUT",
		InterfaceName: "ITEMS_OUT",
		TargetTable:   "item",
		XmlTemplate:   `<Doc><Head/></Doc>`,
		BodyNodeName:  "Head",
		Fields: []integration.IntegrationField{
			{XmlPath: "Material", DbColumn: "code"},
		},
	}))

	log := zaptest.NewLogger(t)
	gateway := persistence.NewGormTableGateway(db.DB)
	guard := dynsql.NewGuard(nil)

	return NewEngine(EngineConfig{
		HTTP:        config.HTTPConfig{MaxBodySize: maxBodySize},
		ServiceName: "test",
		Logger:      log,
	}, Handlers{
		Integration: handler.NewIntegrationHandler(
			appintegration.NewInboundService(repo, gateway, guard, log),
			appintegration.NewOutboundService(repo, gateway, guard, integration.NewGenerators(""), log),
		),
		Configuration: handler.NewConfigurationHandler(appintegration.NewConfigurationService(repo, log)),
		System:        handler.NewSystemHandler(db, "test"),
	})
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func serve(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestNewEngine_InboundThenOutbound(t *testing.T) {
	engine := newTestEngine(t, 1<<20)

	w, env := serve(t, engine, http.MethodPost, "/api/v1/integration/ITEMS",
		`<Items><Item><Code>A</Code><Text>Bolt</Text></Item><Item><Code>B</Code></Item></Items>`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var inbound struct {
		InterfaceName     string `json:"interface_name"`
		TotalRowsInserted int    `json:"total_rows_inserted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &inbound))
	assert.Equal(t, "ITEMS", inbound.InterfaceName)
	assert.Equal(t, 2, inbound.TotalRowsInserted)

	w, env = serve(t, engine, http.MethodPost, "/api/v1/integration/ITEMS_OUT/outbound", `{"record_ids":[1,2,3]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var outbound struct {
		Documents map[string]string `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &outbound))
	require.Len(t, outbound.Documents, 2)
	assert.Contains(t, outbound.Documents["1"], "<Head><Material>A</Material></Head>")
	assert.Contains(t, outbound.Documents["2"], "<Head><Material>B</Material></Head>")
}

func TestNewEngine_Errors(t *testing.T) {
	engine := newTestEngine(t, 64)

	w, env := serve(t, engine, http.MethodPost, "/api/v1/integration/UNKNOWN", `<x/>`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_CONFIGURATION_NOT_FOUND", env.Error.Code)

	w, env = serve(t, engine, http.MethodPost, "/api/v1/integration/ITEMS", `<Items><Item></Items>`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_MALFORMED_INPUT", env.Error.Code)

	w, env = serve(t, engine, http.MethodPost, "/api/v1/integration/ITEMS", strings.Repeat("<Items/>", 10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "ERR_REQUEST_TOO_LARGE", env.Error.Code)

	w, _ = serve(t, engine, http.MethodPost, "/api/v1/integration/ITEMS/outbound", `{"record_ids":[1]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = serve(t, engine, http.MethodDelete, "/api/v1/integration/ITEMS", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_NOT_FOUND", env.Error.Code)
	assert.NotEmpty(t, env.Error.RequestID)
}

func TestNewEngine_ConfigurationAndHealth(t *testing.T) {
	engine := newTestEngine(t, 0)

	w, env := serve(t, engine, http.MethodGet, "/api/v1/configuration", "")
	require.Equal(t, http.StatusOK, w.Code)
	var processes []appintegration.ProcessResponse
	require.NoError(t, json.Unmarshal(env.Data, &processes))
	require.Len(t, processes, 2)
	assert.Equal(t, appintegration.DirectionInbound, processes[0].Direction)
	assert.Equal(t, appintegration.DirectionOutbound, processes[1].Direction)

	w, env = serve(t, engine, http.MethodGet, "/api/v1/configuration/ITEMS", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"process_name":"ITEM"`)

	w, env = serve(t, engine, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"database":"up"`)
	assert.Contains(t, string(env.Data), `"pool":{`)
}
