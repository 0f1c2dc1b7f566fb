package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/apphandler"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
)

type streamEnv struct {
	controller *apphandler.Controller
	hub        *Hub
	server     *httptest.Server
}

func setupStream(t *testing.T) *streamEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := apphandler.New(apphandler.Options{
		Directory: apphandler.DirectoryFunc(func(_ context.Context, d types.AppDetail) (types.AppIdentity, error) {
			return types.AppIdentity("app-" + utils.BinaryName(d.AbsolutePath)), nil
		}),
		Launcher: apphandler.LauncherFunc(func(context.Context, string) (int, error) { return 1, nil }),
	})
	require.NoError(t, err)
	go c.Run(context.Background())

	hub := NewHub(nil, monitoring.NewMetrics(), 16)
	require.NoError(t, hub.Attach(context.Background(), c))

	router := gin.New()
	router.GET("/stream", hub.HandleConnection)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		srv.Close()
		_ = c.Terminate(context.Background())
	})
	return &streamEnv{controller: c, hub: hub, server: srv}
}

func (e *streamEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/stream" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	welcome := read(t, conn)
	require.Equal(t, "system", welcome.Type)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) types.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg types.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 5*time.Second, 10*time.Millisecond)
}

func TestStreamReceivesEvents(t *testing.T) {
	env := setupStream(t)
	conn := env.dial(t, "")
	waitForClients(t, env.hub, 1)

	ctx := context.Background()
	app, err := env.controller.Add(ctx, types.AppDetail{AbsolutePath: "/bin/foo"})
	require.NoError(t, err)
	_, err = env.controller.Remove(ctx, app.ID)
	require.NoError(t, err)

	added := read(t, conn)
	require.Equal(t, "event", added.Type)
	require.NotNil(t, added.Event)
	assert.Equal(t, types.CategoryAdded, added.Event.Category)
	assert.Equal(t, app.ID, added.Event.AppID)

	removed := read(t, conn)
	require.NotNil(t, removed.Event)
	assert.Equal(t, types.CategoryRemoved, removed.Event.Category)
	assert.False(t, removed.Event.Present)
	assert.Greater(t, removed.Event.Seq, added.Event.Seq)
}

func TestStreamCategoryFilter(t *testing.T) {
	env := setupStream(t)
	conn := env.dial(t, "?categories=removed")
	waitForClients(t, env.hub, 1)

	ctx := context.Background()
	app, err := env.controller.Add(ctx, types.AppDetail{AbsolutePath: "/bin/foo"})
	require.NoError(t, err)
	_, err = env.controller.Remove(ctx, app.ID)
	require.NoError(t, err)

	msg := read(t, conn)
	require.NotNil(t, msg.Event)
	assert.Equal(t, types.CategoryRemoved, msg.Event.Category)
}

func TestStreamControlMessages(t *testing.T) {
	env := setupStream(t)
	conn := env.dial(t, "")

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "ping"}))
	assert.Equal(t, "pong", read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "subscribe", Categories: []types.Category{"modified"}}))
	sub := read(t, conn)
	assert.Equal(t, "subscribed", sub.Type)
	assert.Equal(t, []types.Category{types.CategoryModified}, sub.Categories)

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "subscribe", Categories: []types.Category{"bogus"}}))
	assert.Equal(t, "error", read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "launch"}))
	assert.Equal(t, "error", read(t, conn).Type)
}

func TestStreamDisconnectRemovesClient(t *testing.T) {
	env := setupStream(t)
	conn := env.dial(t, "")
	waitForClients(t, env.hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, env.hub, 0)
}

func TestParseCategories(t *testing.T) {
	all, err := ParseCategories("")
	require.NoError(t, err)
	assert.Equal(t, types.Categories(), all)

	some, err := ParseCategories("added, modified")
	require.NoError(t, err)
	assert.Equal(t, []types.Category{types.CategoryAdded, types.CategoryModified}, some)

	_, err = ParseCategories("added,deleted")
	assert.Error(t, err)
}

func TestBadCategoryRejectedBeforeUpgrade(t *testing.T) {
	env := setupStream(t)
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/stream?categories=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}
