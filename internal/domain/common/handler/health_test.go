package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serve(h *HealthHandler) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealth(t *testing.T) {
	up := PingFunc(func(ctx context.Context) error { return nil })
	down := PingFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	t.Run("All up", func(t *testing.T) {
		w := serve(NewHealthHandler(map[string]Pinger{"database": up, "redis": up}, zap.NewNop()))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("One down", func(t *testing.T) {
		w := serve(NewHealthHandler(map[string]Pinger{"database": down, "redis": up}, zap.NewNop()))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var body struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "down", body.Data["database"])
		assert.Equal(t, "up", body.Data["redis"])
	})
}
