package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patrickohh/Game-N-Go/internal/auth"
	"github.com/patrickohh/Game-N-Go/internal/models"
	"github.com/patrickohh/Game-N-Go/internal/monitoring"
	"github.com/patrickohh/Game-N-Go/internal/relation"
	"github.com/patrickohh/Game-N-Go/internal/store"
	"github.com/patrickohh/Game-N-Go/internal/validate"
)

const (
	gameNotFoundMsg     = "No game with this game_id exists"
	gameOrStoreMissing  = "No game with this game_id or store with store_id exists"
	noGamesForUserMsg   = "Currently no games posted under this user"
	gamePatchForbidden  = "Game with this id can only be patched by its original poster"
	gameEditForbidden   = "Game with this id can only be edited by its original poster"
	gameDeleteForbidden = "Game with this id can only be deleted by its original poster"
	assignForbidden     = "Game with this id can only be assigned to a store by its original poster"
	unassignForbidden   = "Game with this id can only be un-assigned to a store by its original poster"
)

// GameHandler serves the /games resource.
type GameHandler struct {
	db  store.Client
	rel *relation.Maintainer
}

func NewGameHandler(db store.Client, rel *relation.Maintainer) *GameHandler {
	return &GameHandler{db: db, rel: rel}
}

// gameNames collects id/title pairs of every game for the uniqueness scan.
// The store offers no uniqueness index, so this is a full-kind read.
func gameNames(ctx context.Context, db store.Client) ([]validate.Named, error) {
	games, _, err := store.ListAs[models.Game](ctx, db, models.KindGame, nil, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	named := make([]validate.Named, len(games))
	for i, g := range games {
		named[i] = validate.Named{ID: g.ID, Name: g.Title}
	}
	return named, nil
}

func (h *GameHandler) loadGame(c *gin.Context, id, notFoundMsg string) (*models.Game, bool) {
	game, err := store.GetAs[models.Game](c.Request.Context(), h.db, models.KindGame, id)
	if errors.Is(err, store.ErrNotFound) {
		abortError(c, http.StatusNotFound, notFoundMsg)
		return nil, false
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to load game")
		return nil, false
	}
	return game, true
}

// Create godoc
// @Summary      Post a new game for rental
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} models.Game
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Title is not unique"
// @Router       /games [post]
func (h *GameHandler) Create(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	claims := auth.FromContext(c)

	var content map[string]any
	if err := c.ShouldBindJSON(&content); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	if verr := validate.Game.Payload(content); verr != nil {
		abortValidation(c, verr)
		return
	}
	values := validate.Game.Values(content)

	named, err := gameNames(c.Request.Context(), h.db)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to create game")
		return
	}
	if verr := validate.Game.Unique(values["title"], "", named); verr != nil {
		abortValidation(c, verr)
		return
	}

	game := models.NewGame(values["title"], values["genre"], values["rating"], values["publisher"], claims.Subject)
	if _, err := h.db.Put(c.Request.Context(), models.KindGame, game); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to create game")
		return
	}

	enrichGame(baseURL(c), game)
	c.JSON(http.StatusCreated, game)
}

// List godoc
// @Summary      List the caller's posted games
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int false "Page size" default(5)
// @Param        offset query int false "Page offset" default(0)
// @Success      200 {object} map[string]any
// @Router       /games [get]
func (h *GameHandler) List(c *gin.Context) {
	claims := auth.FromContext(c)
	w := parseWindow(c)

	games, more, err := store.ListAs[models.Game](c.Request.Context(), h.db, models.KindGame,
		&store.Filter{Field: "poster", Value: claims.Subject},
		store.ListOptions{Limit: w.Limit, Offset: w.Offset})
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to list games")
		return
	}
	if len(games) == 0 {
		c.JSON(http.StatusOK, gin.H{"Message": noGamesForUserMsg})
		return
	}

	base := baseURL(c)
	for i := range games {
		enrichGame(base, &games[i])
	}
	out := gin.H{"games": games}
	if next := w.nextURL(base+"/games", more); next != "" {
		out["next"] = next
	}
	c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary      Get a game by id
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Game ID"
// @Success      200 {object} models.Game
// @Failure      404 {object} ErrorResponse
// @Router       /games/{id} [get]
func (h *GameHandler) Get(c *gin.Context) {
	game, ok := h.loadGame(c, c.Param("id"), gameNotFoundMsg)
	if !ok {
		return
	}
	enrichGame(baseURL(c), game)
	c.JSON(http.StatusOK, game)
}

// Patch godoc
// @Summary      Edit one attribute of a game
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Game ID"
// @Success      200 {object} models.Game
// @Failure      400 {object} ErrorResponse "More or less than one attribute differs"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /games/{id} [patch]
func (h *GameHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

// Put godoc
// @Summary      Replace all editable attributes of a game
// @Description  Returns 303 with the updated representation, preserved for
// @Description  compatibility with existing clients.
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Game ID"
// @Success      303 {object} models.Game
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /games/{id} [put]
func (h *GameHandler) Put(c *gin.Context) {
	h.update(c, false)
}

func (h *GameHandler) update(c *gin.Context, single bool) {
	if !requireJSON(c) {
		return
	}
	claims := auth.FromContext(c)

	var content map[string]any
	if err := c.ShouldBindJSON(&content); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	game, ok := h.loadGame(c, c.Param("id"), gameNotFoundMsg)
	if !ok {
		return
	}
	if game.Poster != claims.Subject {
		if single {
			abortError(c, http.StatusForbidden, gamePatchForbidden)
		} else {
			abortError(c, http.StatusForbidden, gameEditForbidden)
		}
		return
	}

	if verr := validate.Game.Payload(content); verr != nil {
		abortValidation(c, verr)
		return
	}
	next := validate.Game.Values(content)

	if single {
		stored := map[string]string{
			"title":     game.Title,
			"genre":     game.Genre,
			"rating":    game.Rating,
			"publisher": game.Publisher,
		}
		if verr := validate.Game.SinglePatch(stored, next); verr != nil {
			abortValidation(c, verr)
			return
		}
	}

	named, err := gameNames(c.Request.Context(), h.db)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update game")
		return
	}
	if verr := validate.Game.Unique(next["title"], game.ID, named); verr != nil {
		abortValidation(c, verr)
		return
	}

	game.Title = next["title"]
	game.Genre = next["genre"]
	game.Rating = next["rating"]
	game.Publisher = next["publisher"]
	if _, err := h.db.Put(c.Request.Context(), models.KindGame, game); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update game")
		return
	}

	enrichGame(baseURL(c), game)
	if single {
		c.JSON(http.StatusOK, game)
		return
	}
	c.Header("Location", game.Self)
	c.JSON(http.StatusSeeOther, game)
}

// Delete godoc
// @Summary      Delete a game
// @Description  Removes the game from every store carrying it before the
// @Description  record itself is deleted.
// @Tags         games
// @Security     BearerAuth
// @Param        id path string true "Game ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /games/{id} [delete]
func (h *GameHandler) Delete(c *gin.Context) {
	claims := auth.FromContext(c)
	game, ok := h.loadGame(c, c.Param("id"), gameNotFoundMsg)
	if !ok {
		return
	}
	if game.Poster != claims.Subject {
		abortError(c, http.StatusForbidden, gameDeleteForbidden)
		return
	}

	if err := h.rel.CascadeDeleteGame(c.Request.Context(), game.ID); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	if err := h.db.Delete(c.Request.Context(), models.KindGame, game.ID); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) loadGameAndStore(c *gin.Context) (*models.Game, *models.Store, bool) {
	game, err := store.GetAs[models.Game](c.Request.Context(), h.db, models.KindGame, c.Param("id"))
	if err != nil {
		h.abortPairLoad(c, err)
		return nil, nil, false
	}
	st, err := store.GetAs[models.Store](c.Request.Context(), h.db, models.KindStore, c.Param("store_id"))
	if err != nil {
		h.abortPairLoad(c, err)
		return nil, nil, false
	}
	return game, st, true
}

func (h *GameHandler) abortPairLoad(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		abortError(c, http.StatusNotFound, gameOrStoreMissing)
		return
	}
	abortError(c, http.StatusInternalServerError, "Failed to load game or store")
}

// Assign godoc
// @Summary      Assign a game to a store
// @Tags         games
// @Security     BearerAuth
// @Param        id       path string true "Game ID"
// @Param        store_id path string true "Store ID"
// @Success      200
// @Failure      400 {object} ErrorResponse "Already assigned"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /games/{id}/stores/{store_id} [put]
func (h *GameHandler) Assign(c *gin.Context) {
	claims := auth.FromContext(c)
	game, st, ok := h.loadGameAndStore(c)
	if !ok {
		return
	}
	if game.Poster != claims.Subject {
		abortError(c, http.StatusForbidden, assignForbidden)
		return
	}
	if err := h.rel.Assign(c.Request.Context(), game, st); err != nil {
		abortRelation(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Unassign godoc
// @Summary      Remove a game from a store
// @Tags         games
// @Security     BearerAuth
// @Param        id       path string true "Game ID"
// @Param        store_id path string true "Store ID"
// @Success      200
// @Failure      400 {object} ErrorResponse "Not assigned"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /games/{id}/stores/{store_id} [delete]
func (h *GameHandler) Unassign(c *gin.Context) {
	claims := auth.FromContext(c)
	game, st, ok := h.loadGameAndStore(c)
	if !ok {
		return
	}
	if game.Poster != claims.Subject {
		abortError(c, http.StatusForbidden, unassignForbidden)
		return
	}
	if err := h.rel.Unassign(c.Request.Context(), game, st); err != nil {
		abortRelation(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Rent godoc
// @Summary      Rent a game
// @Description  Any authenticated user may rent; the game must be carried
// @Description  by at least one store.
// @Tags         games
// @Security     BearerAuth
// @Param        id path string true "Game ID"
// @Success      200
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /games/{id}/rent [put]
func (h *GameHandler) Rent(c *gin.Context) {
	claims := auth.FromContext(c)
	game, ok := h.loadGame(c, c.Param("id"), gameOrStoreMissing)
	if !ok {
		return
	}
	if err := h.rel.Rent(c.Request.Context(), game, claims.Subject); err != nil {
		monitoring.RentalActions.WithLabelValues("rent", "rejected").Inc()
		abortRelation(c, err)
		return
	}
	monitoring.RentalActions.WithLabelValues("rent", "ok").Inc()
	c.Status(http.StatusOK)
}

// Return godoc
// @Summary      Return a rented game
// @Tags         games
// @Security     BearerAuth
// @Param        id path string true "Game ID"
// @Success      200
// @Failure      400 {object} ErrorResponse "Not renting"
// @Failure      404 {object} ErrorResponse
// @Router       /games/{id}/rent [delete]
func (h *GameHandler) Return(c *gin.Context) {
	claims := auth.FromContext(c)
	game, ok := h.loadGame(c, c.Param("id"), gameOrStoreMissing)
	if !ok {
		return
	}
	if err := h.rel.Return(c.Request.Context(), game, claims.Subject); err != nil {
		monitoring.RentalActions.WithLabelValues("return", "rejected").Inc()
		abortRelation(c, err)
		return
	}
	monitoring.RentalActions.WithLabelValues("return", "ok").Inc()
	c.Status(http.StatusOK)
}
