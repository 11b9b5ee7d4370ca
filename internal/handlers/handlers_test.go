package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalReferer(t *testing.T) {
	cases := []struct {
		referer string
		want    string
	}{
		{"", "/feed"},
		{"http://example.com/post/1", "/post/1"},
		{"https://example.com/user/2?tab=posts", "/user/2?tab=posts"},
		{"/myposts", "/myposts"},
		{"http://other.com/post/1", "/feed"},
		{"http://example.com.evil.com/x", "/feed"},
		{"http://example.com//evil.com/x", "/feed"},
		{`http://example.com/\evil.com/x`, "/feed"},
		{"//evil.com/x", "/feed"},
		{"javascript:alert(1)", "/feed"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/post/1/like", nil)
		if tc.referer != "" {
			req.Header.Set("Referer", tc.referer)
		}
		assert.Equal(t, tc.want, localReferer(req, "/feed"), tc.referer)
	}
}
