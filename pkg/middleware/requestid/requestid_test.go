package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, Value(c)) })

	cases := map[string]bool{
		"":                      false,
		"abc-123_x.y":           true,
		"has space":             false,
		strings.Repeat("a", 65): false,
	}
	for incoming, kept := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header.Set(Header, incoming)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		id := w.Header().Get(Header)
		assert.Equal(t, id, w.Body.String())
		if kept {
			assert.Equal(t, incoming, id)
		} else {
			_, err := uuid.Parse(id)
			require.NoError(t, err, incoming)
		}
	}
}
