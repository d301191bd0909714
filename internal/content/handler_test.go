package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indiepro/indiepro/internal/shared"
)

type stubUnlock map[string]bool

func (s stubUnlock) IsUnlocked(ctx context.Context, userID string) (bool, error) {
	return s[userID], nil
}

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/learn", NewHandler(nil, stubUnlock{"paid": true}).MountRoutes)
	return r
}

func get(h http.Handler, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req = req.WithContext(shared.ContextWithUserID(req.Context(), userID))
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestListInReadingOrder(t *testing.T) {
	list := List()
	require.Len(t, list, 5)
	assert.Equal(t, "llc-basics", list[0].Slug)
	assert.Equal(t, "ca-llc-setup", list[4].Slug)
}

func TestGuideGatedForAnonymousAndLocked(t *testing.T) {
	router := newRouter()
	for _, user := range []string{"", "free"} {
		res := get(router, "/api/learn/income-structures", user)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), `"locked":true`)
		assert.Contains(t, res.Body.String(), "collection is not ownership")
		assert.NotContains(t, res.Body.String(), "Structure B")
	}
}

func TestGuideUnlocked(t *testing.T) {
	res := get(newRouter(), "/api/learn/income-structures", "paid")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"locked":false`)
	assert.Contains(t, res.Body.String(), "Structure B")
}

func TestGuideWithoutGatedContentIsNeverLocked(t *testing.T) {
	res := get(newRouter(), "/api/learn/ca-llc-setup", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"locked":false`)
	assert.Contains(t, res.Body.String(), `"checklist":"ca-llc-setup"`)
}

func TestGuideNotFound(t *testing.T) {
	res := get(newRouter(), "/api/learn/crypto", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}
