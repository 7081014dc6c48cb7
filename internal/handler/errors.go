package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patrickohh/Game-N-Go/internal/models"
	"github.com/patrickohh/Game-N-Go/internal/relation"
	"github.com/patrickohh/Game-N-Go/internal/validate"
)

// ErrorResponse is the JSON body for every failed request.
type ErrorResponse struct {
	Error string `json:"Error"`
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

func abortValidation(c *gin.Context, verr *validate.Error) {
	abortError(c, verr.Status, verr.Message)
}

// abortRelation maps relationship-maintainer failures onto 400 responses;
// anything else is a store I/O failure.
func abortRelation(c *gin.Context, err error) {
	switch {
	case errors.Is(err, relation.ErrAlreadyAssigned),
		errors.Is(err, relation.ErrNotAssigned),
		errors.Is(err, relation.ErrNoStoresAssigned),
		errors.Is(err, relation.ErrAlreadyRenting),
		errors.Is(err, relation.ErrNotRenting):
		abortError(c, http.StatusBadRequest, err.Error())
	default:
		abortError(c, http.StatusInternalServerError, "Failed to update relationship")
	}
}

// requireJSON rejects mutating requests whose body is not application/json.
func requireJSON(c *gin.Context) bool {
	if c.ContentType() != "application/json" {
		abortError(c, http.StatusNotAcceptable, "Not acceptable")
		return false
	}
	return true
}

// MethodNotAllowed answers the collection-root verbs the API does not
// support.
func MethodNotAllowed(c *gin.Context) {
	abortError(c, http.StatusMethodNotAllowed,
		fmt.Sprintf("API does not support %s requests at this URL", c.Request.Method))
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func gameSelf(base, id string) string  { return base + "/games/" + id }
func storeSelf(base, id string) string { return base + "/stores/" + id }
func userSelf(base, id string) string  { return base + "/users/" + id }

// enrichGame resolves the game's self link and those of its embedded
// references. Links are response-only and never persisted.
func enrichGame(base string, g *models.Game) {
	g.Self = gameSelf(base, g.ID)
	for i := range g.Stores {
		g.Stores[i].Self = storeSelf(base, g.Stores[i].ID)
	}
	for i := range g.Renters {
		g.Renters[i].Self = userSelf(base, g.Renters[i].ID)
	}
}

func enrichStore(base string, s *models.Store) {
	s.Self = storeSelf(base, s.ID)
	for i := range s.Games {
		s.Games[i].Self = gameSelf(base, s.Games[i].ID)
	}
}
