package models

// User represents a registered user. The id is the subject claim from the
// identity provider and doubles as the persistent key, so users are never
// created with a store-assigned id.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Self  string `json:"self,omitempty"`
}

func (u *User) EntityID() string      { return u.ID }
func (u *User) SetEntityID(id string) { u.ID = id }
