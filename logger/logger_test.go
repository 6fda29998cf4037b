package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "WARN", Output: &buf})

	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "chatty", Output: &buf})

	l.Debug().Msg("debug")
	l.Info().Msg("info")

	assert.NotContains(t, buf.String(), `"message":"debug"`)
	assert.Contains(t, buf.String(), `"message":"info"`)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(Middleware(New(Config{Level: "debug", Output: &buf})))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "/missing", line["path"])
	assert.EqualValues(t, 404, line["status"])
	assert.Equal(t, http.MethodGet, line["method"])
}
