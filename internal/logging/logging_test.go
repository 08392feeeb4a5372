package logging_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/srich3/portfolio/internal/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevels(t *testing.T) {
	logger, err := logging.New(true, "warn")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.InfoLevel))
	require.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = logging.New(false, "loud")
	require.Error(t, err)
}

func TestMiddlewareAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	router := gin.New()
	router.Use(logging.Middleware(logger, func(string) string { return "hashed" }), logging.Recovery(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/boom", func(_ *gin.Context) { panic("boom") })

	for path, status := range map[string]int{"/ok": 200, "/missing": 404, "/boom": 500} {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, status, recorder.Code, path)
	}

	require.Equal(t, 1, logs.FilterMessage("Request served").Len())
	require.Equal(t, 1, logs.FilterMessage("Request rejected").Len())
	require.Equal(t, 1, logs.FilterMessage("Handler panic").Len())
	require.Equal(t, 1, logs.FilterMessage("Request failed").Len())
	require.Equal(t, "hashed", logs.FilterMessage("Request served").All()[0].ContextMap()["client"])
}
