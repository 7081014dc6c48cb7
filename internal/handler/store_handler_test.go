package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickohh/Game-N-Go/internal/models"
)

func TestCreateStoreRoundTrip(t *testing.T) {
	router, _ := newTestAPI(t)

	w := do(t, router, http.MethodPost, "/stores", bob, validStore("GameStop"))
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode[models.Store](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, bob, created.Owner)
	assert.Empty(t, created.Games)
	assert.Contains(t, created.Self, "/stores/"+created.ID)

	got := decode[models.Store](t, do(t, router, http.MethodGet, "/stores/"+created.ID, alice, nil))
	assert.Equal(t, "GameStop", got.Name)
	assert.Equal(t, "Corvallis", got.Location)
	assert.Equal(t, "retail", got.Type)
}

func TestCreateStoreRejections(t *testing.T) {
	router, _ := newTestAPI(t)

	t.Run("duplicate name", func(t *testing.T) {
		createStore(t, router, bob, "GameStop")
		w := do(t, router, http.MethodPost, "/stores", alice, validStore("GameStop"))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Name of store in request body is not unique", errorMessage(t, w))
	})
	t.Run("protected games field", func(t *testing.T) {
		payload := validStore("Target")
		payload["games"] = []any{}
		w := do(t, router, http.MethodPost, "/stores", bob, payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Cannot edit ID, games, or owner attributes of store", errorMessage(t, w))
	})
	t.Run("location with underscore", func(t *testing.T) {
		payload := validStore("Target")
		payload["location"] = "down_town"
		w := do(t, router, http.MethodPost, "/stores", bob, payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("name too long", func(t *testing.T) {
		payload := validStore("An Exceedingly Long Store Name")
		w := do(t, router, http.MethodPost, "/stores", bob, payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStoresCollectionMethodNotAllowed(t *testing.T) {
	router, _ := newTestAPI(t)
	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		w := do(t, router, method, "/stores", bob, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	}
}

func TestPatchStore(t *testing.T) {
	router, _ := newTestAPI(t)
	id := createStore(t, router, bob, "GameStop")

	t.Run("single field succeeds", func(t *testing.T) {
		payload := validStore("GameStop")
		payload["location"] = "Portland"
		w := do(t, router, http.MethodPatch, "/stores/"+id, bob, payload)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Portland", decode[models.Store](t, w).Location)
	})
	t.Run("two fields fail", func(t *testing.T) {
		payload := validStore("MegaStop")
		payload["type"] = "online"
		w := do(t, router, http.MethodPatch, "/stores/"+id, bob, payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("non-owner is forbidden", func(t *testing.T) {
		payload := validStore("MegaStop")
		payload["location"] = "Portland"
		w := do(t, router, http.MethodPatch, "/stores/"+id, alice, payload)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t,
			"Store with this id can only be patched by its original owner",
			errorMessage(t, w))
	})
}

func TestPutStore(t *testing.T) {
	router, _ := newTestAPI(t)
	id := createStore(t, router, bob, "GameStop")

	payload := map[string]any{
		"name":     "MegaStop",
		"location": "Portland",
		"type":     "online",
	}
	w := do(t, router, http.MethodPut, "/stores/"+id, bob, payload)
	require.Equal(t, http.StatusSeeOther, w.Code)
	updated := decode[models.Store](t, w)
	assert.Equal(t, "MegaStop", updated.Name)
	assert.Equal(t, "online", updated.Type)
}

func TestDeleteStoreCascades(t *testing.T) {
	router, _ := newTestAPI(t)
	gameID := createGame(t, router, alice, "Halo")
	storeID := createStore(t, router, bob, "GameStop")

	w := do(t, router, http.MethodPut, "/games/"+gameID+"/stores/"+storeID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("non-owner is forbidden", func(t *testing.T) {
		w := do(t, router, http.MethodDelete, "/stores/"+storeID, alice, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t,
			"Store with this id can only be deleted by its original owner",
			errorMessage(t, w))
	})

	w = do(t, router, http.MethodDelete, "/stores/"+storeID, bob, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// The game no longer references the deleted store.
	game := decode[models.Game](t, do(t, router, http.MethodGet, "/games/"+gameID, alice, nil))
	assert.Empty(t, game.Stores)

	w = do(t, router, http.MethodGet, "/stores/"+storeID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No store with this store_id exists", errorMessage(t, w))
}

func TestListStoresPagination(t *testing.T) {
	router, _ := newTestAPI(t)

	for i := 0; i < 6; i++ {
		createStore(t, router, bob, fmt.Sprintf("Store %d", i))
	}

	w := do(t, router, http.MethodGet, "/stores?limit=4", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Stores []models.Store `json:"stores"`
		Next   string         `json:"next"`
	}](t, w)
	assert.Len(t, page.Stores, 4)
	assert.Contains(t, page.Next, "limit=4")
	assert.Contains(t, page.Next, "offset=4")

	t.Run("caller with no stores gets a message", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/stores", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[map[string]any](t, w)
		assert.Equal(t, "Currently owning no stores under this user", body["Message"])
	})
}
