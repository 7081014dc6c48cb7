package models

// Store represents a rental store listing.
type Store struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Type     string `json:"type"`
	Owner    string `json:"owner"`
	Games    []Ref  `json:"games"`
	Self     string `json:"self,omitempty"`
}

func (s *Store) EntityID() string      { return s.ID }
func (s *Store) SetEntityID(id string) { s.ID = id }

// NewStore returns a store owned by owner with an empty games list.
func NewStore(name, location, typ, owner string) *Store {
	return &Store{
		Name:     name,
		Location: location,
		Type:     typ,
		Owner:    owner,
		Games:    []Ref{},
	}
}
