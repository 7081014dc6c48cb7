package models

// Game represents a game listing posted for rental.
type Game struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Genre     string `json:"genre"`
	Rating    string `json:"rating"`
	Publisher string `json:"publisher"`
	Poster    string `json:"poster"`
	Stores    []Ref  `json:"stores"`
	Renters   []Ref  `json:"renters"`
	Self      string `json:"self,omitempty"`
}

func (g *Game) EntityID() string      { return g.ID }
func (g *Game) SetEntityID(id string) { g.ID = id }

// NewGame returns a game owned by poster with empty relationship lists.
func NewGame(title, genre, rating, publisher, poster string) *Game {
	return &Game{
		Title:     title,
		Genre:     genre,
		Rating:    rating,
		Publisher: publisher,
		Poster:    poster,
		Stores:    []Ref{},
		Renters:   []Ref{},
	}
}
