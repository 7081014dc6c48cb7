package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func windowFor(t *testing.T, rawQuery string) Window {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/games?"+rawQuery, nil)
	return parseWindow(c)
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Window
	}{
		{"defaults", "", Window{Limit: 5, Offset: 0}},
		{"explicit", "limit=3&offset=6", Window{Limit: 3, Offset: 6}},
		{"garbage limit", "limit=abc", Window{Limit: 5, Offset: 0}},
		{"negative offset", "offset=-2", Window{Limit: 5, Offset: 0}},
		{"zero limit", "limit=0", Window{Limit: 5, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, windowFor(t, tt.query))
		})
	}
}

func TestNextURL(t *testing.T) {
	w := Window{Limit: 5, Offset: 5}
	assert.Equal(t, "http://localhost/games?limit=5&offset=10", w.nextURL("http://localhost/games", true))
	assert.Empty(t, w.nextURL("http://localhost/games", false))
}
