package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetTokenFromRequest(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		cookie  string
		want    string
		wantErr bool
	}{
		{"bearer header", "Bearer abc", "", "abc", false},
		{"raw header", "abc", "", "abc", false},
		{"header wins over cookie", "Bearer abc", "def", "abc", false},
		{"cookie", "", "def", "def", false},
		{"nothing", "", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				r.AddCookie(&http.Cookie{Name: TableCookieName, Value: tc.cookie})
			}
			got, err := GetTokenFromRequest(r)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSetTableCookie(t *testing.T) {
	w := httptest.NewRecorder()
	SetTableCookie(w, "tok", time.Hour, false)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != TableCookieName || c.Value != "tok" || c.MaxAge != 3600 || !c.HttpOnly {
		t.Fatalf("unexpected cookie %+v", c)
	}
	if c.SameSite != http.SameSiteLaxMode || c.Secure {
		t.Fatalf("development cookie should be Lax and not Secure: %+v", c)
	}
}
