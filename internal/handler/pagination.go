package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit  = 5
	defaultOffset = 0
)

// Window is the limit/offset slice requested by the client.
type Window struct {
	Limit  int
	Offset int
}

// parseWindow reads limit and offset from the query string, falling back
// to the defaults on absent or unparsable values.
func parseWindow(c *gin.Context) Window {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", strconv.Itoa(defaultOffset)))
	if err != nil || offset < 0 {
		offset = defaultOffset
	}
	return Window{Limit: limit, Offset: offset}
}

// nextURL builds the link to the following page, or "" when the current
// window exhausts the results.
func (w Window) nextURL(collectionURL string, more bool) string {
	if !more {
		return ""
	}
	return fmt.Sprintf("%s?limit=%d&offset=%d", collectionURL, w.Limit, w.Offset+w.Limit)
}
