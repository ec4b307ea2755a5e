package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/connect4-table/pkg/auth"
)

func TestTableAuthStoresTableID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "middleware-secret"

	var seen string
	router := gin.New()
	router.GET("/tables/:id", TableAuth(secret), func(c *gin.Context) {
		seen = c.GetString(TableIDKey)
		c.Status(http.StatusOK)
	})

	token, err := auth.GenerateTableToken(secret, "t-42", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	cases := []struct {
		name   string
		path   string
		token  string
		status int
		want   string
	}{
		{"matching table", "/tables/t-42", token, http.StatusOK, "t-42"},
		{"other table", "/tables/t-7", token, http.StatusForbidden, ""},
		{"no token", "/tables/t-42", "", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if seen != tc.want {
				t.Fatalf("expected table id %q in context, got %q", tc.want, seen)
			}
		})
	}
}
