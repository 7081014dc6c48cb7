package models

// Entity store kinds.
const (
	KindGame  = "game"
	KindStore = "store"
	KindUser  = "user"
)

// Ref is an embedded relationship reference record: one side of a
// game/store or game/renter link. Only the id is persisted; Self is
// resolved at read time.
type Ref struct {
	ID   string `json:"id"`
	Self string `json:"self,omitempty"`
}

// ContainsRef reports whether refs holds an entry for id.
func ContainsRef(refs []Ref, id string) bool {
	for _, r := range refs {
		if r.ID == id {
			return true
		}
	}
	return false
}

// WithoutRef returns a new slice with every entry for id removed.
// Rebuilding instead of deleting in place keeps removal correct when the
// same id appears more than once.
func WithoutRef(refs []Ref, id string) []Ref {
	kept := make([]Ref, 0, len(refs))
	for _, r := range refs {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return kept
}
