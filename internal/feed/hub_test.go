package feed

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"itinventory/pkg/metadata"
	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubDeliversOnlyToOwningPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens, err := security.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/feed", security.JWTMiddleware(tokens, noRevocations{}), hub.Serve)
	server := httptest.NewServer(router)
	defer server.Close()

	owner := dial(t, server.URL, tokens, models.Principal{ID: "1", Email: "a@example.com", Role: "user"})
	defer owner.Close()
	stranger := dial(t, server.URL, tokens, models.Principal{ID: "2", Email: "b@example.com", Role: "user"})
	defer stranger.Close()

	// registration happens on the hub goroutine
	time.Sleep(50 * time.Millisecond)

	hub.Publish("1", models.Transaction{
		ID:       "tx-1",
		User:     "a@example.com",
		Type:     metadata.TypeMasterList,
		Reason:   metadata.ReasonAdd,
		ItemName: "Dell 3420",
	})

	require.NoError(t, owner.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := owner.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "transaction", msg.Type)
	assert.Equal(t, "Dell 3420", msg.Transaction.ItemName)

	require.NoError(t, stranger.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = stranger.ReadMessage()
	assert.Error(t, err)
}

func TestSignOutClosesPrincipalSubscriptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens, err := security.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/feed", security.JWTMiddleware(tokens, noRevocations{}), hub.Serve)
	server := httptest.NewServer(router)
	defer server.Close()

	leaving := models.Principal{ID: "1", Email: "a@example.com", Role: "user"}
	first := dial(t, server.URL, tokens, leaving)
	defer first.Close()
	second := dial(t, server.URL, tokens, leaving)
	defer second.Close()
	staying := dial(t, server.URL, tokens, models.Principal{ID: "2", Email: "b@example.com", Role: "user"})
	defer staying.Close()
	time.Sleep(50 * time.Millisecond)

	hub.HandleEvent(ctx, models.SessionEvent{Kind: models.SignedIn, Principal: leaving})
	hub.HandleEvent(ctx, models.SessionEvent{Kind: models.SignedOut, Principal: leaving})

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err := conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	}

	hub.Publish("2", models.Transaction{ID: "tx-2", ItemName: "HP 400"})
	require.NoError(t, staying.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := staying.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(payload), "HP 400")
}

func TestPublishDoesNotBlockWithoutRunner(t *testing.T) {
	hub := NewHub(zap.NewNop())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish("1", models.Transaction{ItemName: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}
}

type noRevocations struct{}

func (noRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func dial(t *testing.T, serverURL string, tokens *security.TokenManager, principal models.Principal) *websocket.Conn {
	t.Helper()
	token, _, err := tokens.Issue(principal)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/feed?access_token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}
