package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/patrickohh/Game-N-Go/internal/config"
	"github.com/patrickohh/Game-N-Go/internal/models"
	"github.com/patrickohh/Game-N-Go/internal/store"
)

// UserHandler serves /users and the identity-provider login flow. The
// provider is the source of truth for identity; a local user record is
// created lazily the first time a subject completes the callback.
type UserHandler struct {
	db     store.Client
	domain string
	oauth  *oauth2.Config
}

func NewUserHandler(db store.Client, cfg *config.Config) *UserHandler {
	return &UserHandler{
		db:     db,
		domain: cfg.Auth0Domain,
		oauth: &oauth2.Config{
			ClientID:     cfg.Auth0ClientID,
			ClientSecret: cfg.Auth0ClientSecret,
			RedirectURL:  cfg.Auth0CallbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://" + cfg.Auth0Domain + "/authorize",
				TokenURL: "https://" + cfg.Auth0Domain + "/oauth/token",
			},
		},
	}
}

// List godoc
// @Summary      List registered users
// @Tags         users
// @Produce      json
// @Success      200 {array} models.User
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, _, err := store.ListAs[models.User](c.Request.Context(), h.db, models.KindUser, nil, store.ListOptions{})
	if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to list users")
		return
	}
	base := baseURL(c)
	for i := range users {
		users[i].Self = userSelf(base, users[i].ID)
	}
	c.JSON(http.StatusOK, users)
}

// Login godoc
// @Summary      Redirect to the identity provider's login page
// @Tags         auth
// @Success      307
// @Router       /login [get]
func (h *UserHandler) Login(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(uuid.NewString()))
}

// Callback godoc
// @Summary      Identity provider callback
// @Description  Exchanges the authorization code, fetches the user info and
// @Description  registers the user on first login. Responds with the
// @Description  provider-issued id token to use as the bearer token.
// @Tags         auth
// @Produce      json
// @Success      200 {object} map[string]any
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /callback [get]
func (h *UserHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		abortError(c, http.StatusBadRequest, "Authorization code is missing")
		return
	}

	ctx := c.Request.Context()
	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		abortError(c, http.StatusUnauthorized, "Failed to exchange authorization code")
		return
	}
	idToken, _ := token.Extra("id_token").(string)

	resp, err := h.oauth.Client(ctx, token).Get("https://" + h.domain + "/userinfo")
	if err != nil {
		abortError(c, http.StatusUnauthorized, "Failed to fetch user info")
		return
	}
	defer resp.Body.Close()

	var info struct {
		Sub      string `json:"sub"`
		Nickname string `json:"nickname"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Sub == "" {
		abortError(c, http.StatusUnauthorized, "Failed to fetch user info")
		return
	}

	user, err := store.GetAs[models.User](ctx, h.db, models.KindUser, info.Sub)
	if errors.Is(err, store.ErrNotFound) {
		user = &models.User{ID: info.Sub, Name: info.Nickname, Email: info.Email}
		if _, err := h.db.Put(ctx, models.KindUser, user); err != nil {
			abortError(c, http.StatusInternalServerError, "Failed to register user")
			return
		}
	} else if err != nil {
		abortError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	user.Self = userSelf(baseURL(c), user.ID)
	c.JSON(http.StatusOK, gin.H{"token": idToken, "user": user})
}

// Logout godoc
// @Summary      Log out at the identity provider
// @Tags         auth
// @Success      307
// @Router       /logout [get]
func (h *UserHandler) Logout(c *gin.Context) {
	params := url.Values{
		"returnTo":  {baseURL(c)},
		"client_id": {h.oauth.ClientID},
	}
	c.Redirect(http.StatusTemporaryRedirect, "https://"+h.domain+"/v2/logout?"+params.Encode())
}
