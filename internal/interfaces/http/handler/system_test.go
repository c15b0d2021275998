package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		handler    *SystemHandler
		wantStatus int
		wantHealth string
	}{
		{"all up", NewSystemHandler("test").WithCritical("database", ok).WithOptional("factor_cache", ok), http.StatusOK, HealthStatusOK},
		{"cache down degrades", NewSystemHandler("test").WithCritical("database", ok).WithOptional("factor_cache", down), http.StatusOK, HealthStatusDegraded},
		{"database down", NewSystemHandler("test").WithCritical("database", down).WithOptional("factor_cache", ok), http.StatusServiceUnavailable, HealthStatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(func(r *gin.Engine) { r.GET("/health", tt.handler.Health) })

			w := doJSON(t, r, http.MethodGet, "/health", nil)

			require.Equal(t, tt.wantStatus, w.Code)
			var got HealthResponse
			decodeData(t, w, &got)
			assert.Equal(t, tt.wantHealth, got.Status)
			assert.Equal(t, "test", got.Version)
			assert.Len(t, got.Checks, 2)
		})
	}
}

func TestSystemHandler_Live(t *testing.T) {
	h := NewSystemHandler("test").WithCritical("database", func(context.Context) error { return errors.New("down") })
	r := newTestRouter(func(r *gin.Engine) { r.GET("/health/live", h.Live) })

	w := doJSON(t, r, http.MethodGet, "/health/live", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}
