package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/infrastruture/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthoriz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := token.NewJwtService("secret", "beppo")

	router := gin.New()
	router.GET("/", Authoriz(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sid": Claims(c)["session_id"]})
	})

	valid, err := tokens.Generate(map[string]interface{}{"session_id": "abc"}, time.Minute)
	require.NoError(t, err)
	foreign, err := token.NewJwtService("other", "beppo").Generate(map[string]interface{}{}, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{name: "Bearer header", header: "Bearer " + valid, status: http.StatusOK},
		{name: "Lower case scheme", header: "bearer " + valid, status: http.StatusOK},
		{name: "Query token", query: "?token=" + valid, status: http.StatusOK},
		{name: "No token", status: http.StatusUnauthorized},
		{name: "Malformed header", header: valid, status: http.StatusUnauthorized},
		{name: "Wrong scheme", header: "Basic " + valid, status: http.StatusUnauthorized},
		{name: "Foreign signature", header: "Bearer " + foreign, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"sid":"abc"}`, w.Body.String())
			}
		})
	}
}
