package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	g := NewDomainGroup("test", "/test")
	g.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(g).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("items", "/items")
	g.Use(func(c *gin.Context) {
		c.Header("X-Group", g.Name())
		c.Next()
	})
	g.GET("", func(c *gin.Context) { c.Status(http.StatusOK) }).
		POST("", func(c *gin.Context) { c.Status(http.StatusCreated) }).
		PUT("/:id", func(c *gin.Context) { c.Status(http.StatusOK) }).
		DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	g.Group("notes", "/:id/notes").GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/items", http.StatusOK},
		{http.MethodPost, "/api/v1/items", http.StatusCreated},
		{http.MethodPut, "/api/v1/items/1", http.StatusOK},
		{http.MethodDelete, "/api/v1/items/1", http.StatusNoContent},
		{http.MethodGet, "/api/v1/items/1/notes", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "items", w.Header().Get("X-Group"))
		})
	}

	assert.Equal(t, "/items", g.Prefix())
}
