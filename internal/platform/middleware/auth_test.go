package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAPIToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := []struct {
		name   string
		token  string
		header map[string]string
		want   int
	}{
		{"disabled when token empty", "", nil, http.StatusNoContent},
		{"missing token", "s3cret", nil, http.StatusUnauthorized},
		{"wrong bearer", "s3cret", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
		{"bearer accepted", "s3cret", map[string]string{"Authorization": "Bearer s3cret"}, http.StatusNoContent},
		{"api key header accepted", "s3cret", map[string]string{HeaderAPIKey: "s3cret"}, http.StatusNoContent},
		{"basic scheme ignored", "s3cret", map[string]string{"Authorization": "Basic s3cret"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/claims/x", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			RequireAPIToken(tc.token, logger)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
			}
		})
	}
}
