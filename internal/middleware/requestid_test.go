package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID_Generated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		if c.GetString(ContextRequestID) == "" {
			t.Error("request ID missing from context")
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("response should carry the generated request ID")
	}
}

func TestRequestID_HonorsCallerID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set(HeaderRequestID, "caller-supplied-id")
	router.ServeHTTP(w, req)

	if got := w.Header().Get(HeaderRequestID); got != "caller-supplied-id" {
		t.Errorf("request ID = %q, expected the caller's", got)
	}
}
