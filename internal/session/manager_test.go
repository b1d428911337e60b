package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"itinventory/internal/docstore"
	"itinventory/internal/inventory/equipment"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var operator = models.Principal{ID: "42", Email: "desk@example.com", DisplayName: "IT Desk", Role: "user"}

func TestManagerFollowsSessionEvents(t *testing.T) {
	docs := docstore.NewMemoryStore()
	seed := equipment.NewStore(docs, operator.ID, zap.NewNop())
	_, err := seed.Insert(context.Background(), models.Equipment{
		Name:     "Dell 3420",
		Category: metadata.CategoryLaptop,
		Status:   metadata.StatusMaster,
	})
	require.NoError(t, err)

	manager := NewManager(docs, zap.NewNop())
	manager.HandleEvent(context.Background(), models.SessionEvent{Kind: models.SignedIn, Principal: operator})

	sess, ok := manager.Get(operator.ID)
	require.True(t, ok)
	assert.Len(t, sess.Store().Equipment(), 1)
	assert.Equal(t, 1, manager.Count())

	again, err := manager.Open(context.Background(), operator)
	require.NoError(t, err)
	assert.Same(t, sess, again)

	manager.HandleEvent(context.Background(), models.SessionEvent{Kind: models.SignedOut, Principal: operator})
	assert.Equal(t, 0, manager.Count())
	assert.True(t, sess.Closed())

	err = sess.Exclusive(func() error { return nil })
	assert.Equal(t, custom_error.CodeUnauthorized, custom_error.CodeOf(err))
}

func TestOpenKeepsSessionWhenLoadFails(t *testing.T) {
	manager := NewManager(unreachable{docstore.NewMemoryStore()}, zap.NewNop())

	sess, err := manager.Open(context.Background(), operator)
	assert.Error(t, err)
	require.NotNil(t, sess)
	assert.Empty(t, sess.Store().Equipment())
	assert.Equal(t, 1, manager.Count())
}

func TestMiddlewareRequiresPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := NewManager(docstore.NewMemoryStore(), zap.NewNop())

	router := gin.New()
	router.GET("/x", manager.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type unreachable struct {
	*docstore.MemoryStore
}

func (unreachable) List(context.Context, string, docstore.Collection) ([]docstore.Document, error) {
	return nil, errors.New("unreachable")
}
