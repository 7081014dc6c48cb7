package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patrickohh/Game-N-Go/internal/auth"
	"github.com/patrickohh/Game-N-Go/internal/models"
	"github.com/patrickohh/Game-N-Go/internal/relation"
	"github.com/patrickohh/Game-N-Go/internal/store"
	"github.com/patrickohh/Game-N-Go/internal/validate"
)

const (
	storeNotFoundMsg     = "No store with this store_id exists"
	noStoresForUserMsg   = "Currently owning no stores under this user"
	storePatchForbidden  = "Store with this id can only be patched by its original owner"
	storeEditForbidden   = "Store with this id can only be edited by its original owner"
	storeDeleteForbidden = "Store with this id can only be deleted by its original owner"
)

// StoreHandler serves the /stores resource. It mirrors GameHandler verb for
// verb; only the schema, ownership field and cascade direction differ.
type StoreHandler struct {
	db  store.Client
	rel *relation.Maintainer
}

func NewStoreHandler(db store.Client, rel *relation.Maintainer) *StoreHandler {
	return &StoreHandler{db: db, rel: rel}
}

func storeNames(ctx context.Context, db store.Client) ([]validate.Named, error) {
	stores, _, err := store.ListAs[models.Store](ctx, db, models.KindStore, nil, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	named := make([]validate.Named, len(stores))
	for i, s := range stores {
		named[i] = validate.Named{ID: s.ID, Name: s.Name}
	}
	return named, nil
}

func (h *StoreHandler) loadStore(c *gin.Context, id string) (*models.Store, bool) {
	st, err := store.GetAs[models.Store](c.Request.Context(), h.db, models.KindStore, id)
	if errors.Is(err, store.ErrNotFound) {
		abortError(c, http.StatusNotFound, storeNotFoundMsg)
		return nil, false
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to load store")
		return nil, false
	}
	return st, true
}

// Create godoc
// @Summary      Open a new store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} models.Store
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Name is not unique"
// @Router       /stores [post]
func (h *StoreHandler) Create(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	claims := auth.FromContext(c)

	var content map[string]any
	if err := c.ShouldBindJSON(&content); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	if verr := validate.Store.Payload(content); verr != nil {
		abortValidation(c, verr)
		return
	}
	values := validate.Store.Values(content)

	named, err := storeNames(c.Request.Context(), h.db)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to create store")
		return
	}
	if verr := validate.Store.Unique(values["name"], "", named); verr != nil {
		abortValidation(c, verr)
		return
	}

	st := models.NewStore(values["name"], values["location"], values["type"], claims.Subject)
	if _, err := h.db.Put(c.Request.Context(), models.KindStore, st); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to create store")
		return
	}

	enrichStore(baseURL(c), st)
	c.JSON(http.StatusCreated, st)
}

// List godoc
// @Summary      List the caller's stores
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int false "Page size" default(5)
// @Param        offset query int false "Page offset" default(0)
// @Success      200 {object} map[string]any
// @Router       /stores [get]
func (h *StoreHandler) List(c *gin.Context) {
	claims := auth.FromContext(c)
	w := parseWindow(c)

	stores, more, err := store.ListAs[models.Store](c.Request.Context(), h.db, models.KindStore,
		&store.Filter{Field: "owner", Value: claims.Subject},
		store.ListOptions{Limit: w.Limit, Offset: w.Offset})
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to list stores")
		return
	}
	if len(stores) == 0 {
		c.JSON(http.StatusOK, gin.H{"Message": noStoresForUserMsg})
		return
	}

	base := baseURL(c)
	for i := range stores {
		enrichStore(base, &stores[i])
	}
	out := gin.H{"stores": stores}
	if next := w.nextURL(base+"/stores", more); next != "" {
		out["next"] = next
	}
	c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary      Get a store by id
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Store ID"
// @Success      200 {object} models.Store
// @Failure      404 {object} ErrorResponse
// @Router       /stores/{id} [get]
func (h *StoreHandler) Get(c *gin.Context) {
	st, ok := h.loadStore(c, c.Param("id"))
	if !ok {
		return
	}
	enrichStore(baseURL(c), st)
	c.JSON(http.StatusOK, st)
}

// Patch godoc
// @Summary      Edit one attribute of a store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Store ID"
// @Success      200 {object} models.Store
// @Failure      400 {object} ErrorResponse "More or less than one attribute differs"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /stores/{id} [patch]
func (h *StoreHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

// Put godoc
// @Summary      Replace all editable attributes of a store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Store ID"
// @Success      303 {object} models.Store
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /stores/{id} [put]
func (h *StoreHandler) Put(c *gin.Context) {
	h.update(c, false)
}

func (h *StoreHandler) update(c *gin.Context, single bool) {
	if !requireJSON(c) {
		return
	}
	claims := auth.FromContext(c)

	var content map[string]any
	if err := c.ShouldBindJSON(&content); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	st, ok := h.loadStore(c, c.Param("id"))
	if !ok {
		return
	}
	if st.Owner != claims.Subject {
		if single {
			abortError(c, http.StatusForbidden, storePatchForbidden)
		} else {
			abortError(c, http.StatusForbidden, storeEditForbidden)
		}
		return
	}

	if verr := validate.Store.Payload(content); verr != nil {
		abortValidation(c, verr)
		return
	}
	next := validate.Store.Values(content)

	if single {
		stored := map[string]string{
			"name":     st.Name,
			"location": st.Location,
			"type":     st.Type,
		}
		if verr := validate.Store.SinglePatch(stored, next); verr != nil {
			abortValidation(c, verr)
			return
		}
	}

	named, err := storeNames(c.Request.Context(), h.db)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update store")
		return
	}
	if verr := validate.Store.Unique(next["name"], st.ID, named); verr != nil {
		abortValidation(c, verr)
		return
	}

	st.Name = next["name"]
	st.Location = next["location"]
	st.Type = next["type"]
	if _, err := h.db.Put(c.Request.Context(), models.KindStore, st); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to update store")
		return
	}

	enrichStore(baseURL(c), st)
	if single {
		c.JSON(http.StatusOK, st)
		return
	}
	c.Header("Location", st.Self)
	c.JSON(http.StatusSeeOther, st)
}

// Delete godoc
// @Summary      Close a store
// @Description  Removes the store from every game assigned to it before the
// @Description  record itself is deleted.
// @Tags         stores
// @Security     BearerAuth
// @Param        id path string true "Store ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /stores/{id} [delete]
func (h *StoreHandler) Delete(c *gin.Context) {
	claims := auth.FromContext(c)
	st, ok := h.loadStore(c, c.Param("id"))
	if !ok {
		return
	}
	if st.Owner != claims.Subject {
		abortError(c, http.StatusForbidden, storeDeleteForbidden)
		return
	}

	if err := h.rel.CascadeDeleteStore(c.Request.Context(), st.ID); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to delete store")
		return
	}
	if err := h.db.Delete(c.Request.Context(), models.KindStore, st.ID); err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to delete store")
		return
	}
	c.Status(http.StatusNoContent)
}
