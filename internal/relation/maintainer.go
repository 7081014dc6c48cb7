// Package relation keeps the two-sided links between games, stores and
// renters consistent. Relationship lists are owned by this package: client
// payloads naming them are rejected upstream, and every mutation here
// rebuilds the affected lists and persists both records.
//
// The entity store offers no multi-key transactions, so a crash between the
// two writes of a two-sided update can leave a dangling one-sided
// reference. That gap is inherited from the store's capabilities.
package relation

import (
	"context"
	"errors"

	"github.com/patrickohh/Game-N-Go/internal/models"
	"github.com/patrickohh/Game-N-Go/internal/store"
)

// Failure messages double as response bodies; texts match the service
// being replaced.
var (
	ErrAlreadyAssigned  = errors.New("Game already assigned to this store")
	ErrNotAssigned      = errors.New("Game is not assigned to store with store_id")
	ErrNoStoresAssigned = errors.New("Game is not found in any stores")
	ErrAlreadyRenting   = errors.New("Already renting this game")
	ErrNotRenting       = errors.New("User not renting this game")
)

// Maintainer mutates relationship lists on game and store records.
type Maintainer struct {
	db store.Client
}

func New(db store.Client) *Maintainer {
	return &Maintainer{db: db}
}

// Assign links the game and the store on both sides and persists both
// records.
func (m *Maintainer) Assign(ctx context.Context, game *models.Game, st *models.Store) error {
	if models.ContainsRef(game.Stores, st.ID) {
		return ErrAlreadyAssigned
	}
	game.Stores = append(game.Stores, models.Ref{ID: st.ID})
	st.Games = append(st.Games, models.Ref{ID: game.ID})
	if _, err := m.db.Put(ctx, models.KindGame, game); err != nil {
		return err
	}
	_, err := m.db.Put(ctx, models.KindStore, st)
	return err
}

// Unassign removes the link from both sides. A store that is not present
// in the game's list fails with ErrNotAssigned rather than silently
// succeeding, so the symmetry invariant stays testable.
func (m *Maintainer) Unassign(ctx context.Context, game *models.Game, st *models.Store) error {
	if !models.ContainsRef(game.Stores, st.ID) {
		return ErrNotAssigned
	}
	game.Stores = models.WithoutRef(game.Stores, st.ID)
	st.Games = models.WithoutRef(st.Games, game.ID)
	if _, err := m.db.Put(ctx, models.KindGame, game); err != nil {
		return err
	}
	_, err := m.db.Put(ctx, models.KindStore, st)
	return err
}

// CascadeDeleteGame removes every reference to the game from all stores.
func (m *Maintainer) CascadeDeleteGame(ctx context.Context, gameID string) error {
	stores, _, err := store.ListAs[models.Store](ctx, m.db, models.KindStore, nil, store.ListOptions{})
	if err != nil {
		return err
	}
	for i := range stores {
		st := &stores[i]
		kept := models.WithoutRef(st.Games, gameID)
		if len(kept) == len(st.Games) {
			continue
		}
		st.Games = kept
		if _, err := m.db.Put(ctx, models.KindStore, st); err != nil {
			return err
		}
	}
	return nil
}

// CascadeDeleteStore removes every reference to the store from all games.
func (m *Maintainer) CascadeDeleteStore(ctx context.Context, storeID string) error {
	games, _, err := store.ListAs[models.Game](ctx, m.db, models.KindGame, nil, store.ListOptions{})
	if err != nil {
		return err
	}
	for i := range games {
		game := &games[i]
		kept := models.WithoutRef(game.Stores, storeID)
		if len(kept) == len(game.Stores) {
			continue
		}
		game.Stores = kept
		if _, err := m.db.Put(ctx, models.KindGame, game); err != nil {
			return err
		}
	}
	return nil
}

// Rent adds the user to the game's renters. Games not carried by any store
// cannot be rented.
func (m *Maintainer) Rent(ctx context.Context, game *models.Game, userID string) error {
	if len(game.Stores) == 0 {
		return ErrNoStoresAssigned
	}
	if models.ContainsRef(game.Renters, userID) {
		return ErrAlreadyRenting
	}
	game.Renters = append(game.Renters, models.Ref{ID: userID})
	_, err := m.db.Put(ctx, models.KindGame, game)
	return err
}

// Return removes the user from the game's renters.
func (m *Maintainer) Return(ctx context.Context, game *models.Game, userID string) error {
	if !models.ContainsRef(game.Renters, userID) {
		return ErrNotRenting
	}
	game.Renters = models.WithoutRef(game.Renters, userID)
	_, err := m.db.Put(ctx, models.KindGame, game)
	return err
}
