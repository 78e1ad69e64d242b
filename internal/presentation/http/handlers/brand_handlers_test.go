package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBrandsReturnsCatalog(t *testing.T) {
	env := newRouterEnv(t)

	w := env.doJSON(t, http.MethodGet, "/api/v1/brands", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	brands, ok := body["brands"].([]any)
	require.True(t, ok, "brands payload missing")
	assert.EqualValues(t, len(brands), body["count"])

	ids := make([]string, 0, len(brands))
	for _, raw := range brands {
		record, ok := raw.(map[string]any)
		require.True(t, ok)
		id, _ := record["id"].(string)
		ids = append(ids, id)
		assert.NotEmpty(t, record["name"], "catalog record %s has no name", id)
	}
	assert.Contains(t, ids, "nike")
	assert.Contains(t, ids, "apple")
	assert.NotContains(t, ids, "unknown", "the sentinel must stay out of the catalog listing")
}

func TestGetBrandByID(t *testing.T) {
	env := newRouterEnv(t)

	w := env.doJSON(t, http.MethodGet, "/api/v1/brands/nike", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "nike", body["id"])
	assert.Equal(t, "Nike", body["name"])

	w = env.doJSON(t, http.MethodGet, "/api/v1/brands/tesla", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBrandSentinelStaysReadable(t *testing.T) {
	env := newRouterEnv(t)

	// Saved history and favorites may reference the sentinel id, so the
	// detail endpoint resolves it like any catalog entry.
	w := env.doJSON(t, http.MethodGet, "/api/v1/brands/unknown", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "unknown", decodeBody(t, w)["id"])
}

func TestResolveKnownBrand(t *testing.T) {
	env := newRouterEnv(t)
	token, _ := env.register(t, "alice", false)

	w := env.doJSON(t, http.MethodPost, "/api/v1/brands/resolve", token, gin.H{
		"query": "I love Nike shoes",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, true, body["known"])
	assert.Equal(t, true, body["saved"])
	record, ok := body["brand"].(map[string]any)
	require.True(t, ok, "brand payload missing")
	assert.Equal(t, "nike", record["id"])

	w = env.doJSON(t, http.MethodGet, "/api/v1/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decodeBody(t, w)["count"])
}

func TestResolveUnknownQueryNotSaved(t *testing.T) {
	env := newRouterEnv(t)
	token, _ := env.register(t, "bob", false)

	w := env.doJSON(t, http.MethodPost, "/api/v1/brands/resolve", token, gin.H{
		"query": "xyzzy gadget",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, false, body["known"])
	assert.Equal(t, false, body["saved"], "unmatched lookups stay out of history")
	record, ok := body["brand"].(map[string]any)
	require.True(t, ok, "brand payload missing")
	assert.Equal(t, "unknown", record["id"])

	w = env.doJSON(t, http.MethodGet, "/api/v1/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, decodeBody(t, w)["count"])
}

func TestResolveRequiresQuery(t *testing.T) {
	env := newRouterEnv(t)
	token, _ := env.register(t, "carol", false)

	w := env.doJSON(t, http.MethodPost, "/api/v1/brands/resolve", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestResolveHonorsAutoSaveOff(t *testing.T) {
	env := newRouterEnv(t)
	token, _ := env.register(t, "dave", false)

	w := env.doJSON(t, http.MethodPut, "/api/v1/preferences", token, gin.H{
		"theme":         "Cyber Dark",
		"notifications": true,
		"autoSaveScans": false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.doJSON(t, http.MethodPost, "/api/v1/brands/resolve", token, gin.H{
		"query": "apple",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, true, body["known"])
	assert.Equal(t, false, body["saved"])

	w = env.doJSON(t, http.MethodGet, "/api/v1/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, decodeBody(t, w)["count"], "auto-save off must keep history empty")
}
