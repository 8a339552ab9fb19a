package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rhymenet/internal/config"
	"github.com/agenthands/rhymenet/internal/driver"
)

func sqliteConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "rhymes.db")
	cfg.Server.Mode = gin.TestMode
	return cfg
}

func TestBuild_SQLiteWithoutLLM(t *testing.T) {
	a, err := Build(context.Background(), sqliteConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.RhymeNet.Composer)
	assert.IsType(t, &driver.BreakerStore{}, a.Store)

	w := httptest.NewRecorder()
	a.Server().SetupRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"closed"`)
}

func TestBuild_WithOpenAIProvider(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Breaker.Enabled = false
	cfg.LLM = config.LLMConfig{Provider: "openai", APIKey: "sk-test"}

	a, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.RhymeNet.Composer)
	assert.IsType(t, &driver.SQLStore{}, a.Store)
	assert.Nil(t, a.Server().Breaker)
}

func TestBuild_UnknownProvider(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.LLM.Provider = "parrot"

	_, err := Build(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unsupported llm provider")
}

func TestClose_Idempotent(t *testing.T) {
	a, err := Build(context.Background(), sqliteConfig(t), nil)
	require.NoError(t, err)

	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}
