// Package validate implements the payload checks guarding game and store
// mutations. Every validator is a pure function over the decoded request
// body; the store scan feeding the uniqueness check is performed by the
// caller. Checks short-circuit at the first failure.
package validate

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Code identifies the validation failure kind.
type Code string

const (
	ProtectedField Code = "protected_field"
	MissingField   Code = "missing_field"
	UnknownField   Code = "unknown_field"
	InvalidChars   Code = "invalid_characters"
	InvalidLength  Code = "invalid_length"
	InvalidRating  Code = "invalid_rating"
	MultiFieldEdit Code = "multi_field_patch"
	DuplicateName  Code = "duplicate_name"
)

// Error is a terminal validation failure carrying the HTTP status and the
// client-facing message.
type Error struct {
	Code    Code
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

func failed(code Code, msg string) *Error {
	status := http.StatusBadRequest
	if code == DuplicateName {
		status = http.StatusForbidden
	}
	return &Error{Code: code, Message: msg, Status: status}
}

// Symbols rejected in free-text fields subject to the character check.
const disallowed = `@_!#$%^&*()<>?/\|}{~:`

var vv = validator.New()

// Rule describes one editable field of a resource kind.
type Rule struct {
	Name    string
	Max     int
	Charset bool     // subject to the disallowed-symbol check
	Enum    []string // allowed values, empty when unconstrained
}

// Schema describes the editable surface of a resource kind together with
// its client-facing error messages.
type Schema struct {
	Kind         string
	Fields       []Rule
	Protected    []string
	NameField    string
	ProtectedMsg string
	CharsetMsg   string
	LengthMsg    string
	EnumMsg      string
	DuplicateMsg string
}

// Message texts are kept byte-for-byte compatible with the service being
// replaced; existing clients match on them.
const (
	missingMsg = "The request object is missing at least one of the required attributes"
	unknownMsg = "The request contains a invalid attribute"
	multiMsg   = "API only allows one attribute to be edited at a time with PATCH request"
)

// Game is the schema for game payloads.
var Game = Schema{
	Kind: "game",
	Fields: []Rule{
		{Name: "title", Max: 30},
		{Name: "genre", Max: 20, Charset: true},
		{Name: "rating", Max: 1, Charset: true, Enum: []string{"C", "E", "T", "M", "A"}},
		{Name: "publisher", Max: 30},
	},
	Protected:    []string{"id", "stores", "renters", "poster", "owner"},
	NameField:    "title",
	ProtectedMsg: "Cannot edit ID, stores, renters, or poster attributes of game",
	CharsetMsg:   "Genre or rating of game contains characters that are not allowed",
	LengthMsg: "Invalid size of game title, genre, rating, or publisher. Correct ranges: Title (0 < characters <= 30);" +
		" Rating (0 < characters < 2); Genre (0 < characters <= 20); Publisher (0 < characters <= 30)",
	EnumMsg:      "The rating attribute of the game contains invalid characters. Allowed characters: C, E, T, M, A",
	DuplicateMsg: "Title of game in request body is not unique",
}

// Store is the schema for store payloads.
var Store = Schema{
	Kind: "store",
	Fields: []Rule{
		{Name: "name", Max: 15},
		{Name: "location", Max: 15, Charset: true},
		{Name: "type", Max: 15, Charset: true},
	},
	Protected:    []string{"id", "games", "owner"},
	NameField:    "name",
	ProtectedMsg: "Cannot edit ID, games, or owner attributes of store",
	CharsetMsg:   "Location or type of store contains characters that are not allowed",
	LengthMsg: "Invalid size of store name, location, or type. Correct ranges: Name (0 < characters <= 15);" +
		" Location (0 < characters < 15); Type (0 < characters <= 15)",
	DuplicateMsg: "Name of store in request body is not unique",
}

// Payload validates a decoded request body for the kind: protected fields,
// required fields, exact field set, character set, lengths and the rating
// enum, in that order.
func (s Schema) Payload(content map[string]any) *Error {
	for _, name := range s.Protected {
		if _, ok := content[name]; ok {
			return failed(ProtectedField, s.ProtectedMsg)
		}
	}
	for _, f := range s.Fields {
		if _, ok := content[f.Name]; !ok {
			return failed(MissingField, missingMsg)
		}
	}
	// All required fields are present, so any surplus key is foreign.
	if len(content) != len(s.Fields) {
		return failed(UnknownField, unknownMsg)
	}

	values := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		v, ok := content[f.Name].(string)
		if !ok {
			return failed(InvalidLength, s.LengthMsg)
		}
		values[f.Name] = v
	}

	for _, f := range s.Fields {
		if f.Charset && strings.ContainsAny(values[f.Name], disallowed) {
			return failed(InvalidChars, s.CharsetMsg)
		}
	}
	for _, f := range s.Fields {
		if err := vv.Var(values[f.Name], fmt.Sprintf("min=1,max=%d", f.Max)); err != nil {
			return failed(InvalidLength, s.LengthMsg)
		}
	}
	for _, f := range s.Fields {
		if len(f.Enum) == 0 {
			continue
		}
		if err := vv.Var(values[f.Name], "oneof="+strings.Join(f.Enum, " ")); err != nil {
			return failed(InvalidRating, s.EnumMsg)
		}
	}
	return nil
}

// Values extracts the editable fields from a payload that has already
// passed Payload, keyed by field name.
func (s Schema) Values(content map[string]any) map[string]string {
	values := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		values[f.Name], _ = content[f.Name].(string)
	}
	return values
}

// SinglePatch enforces the one-attribute-per-PATCH rule by counting the
// fields whose stored and requested values differ: exactly one must change.
func (s Schema) SinglePatch(stored, next map[string]string) *Error {
	changed := 0
	for _, f := range s.Fields {
		if stored[f.Name] != next[f.Name] {
			changed++
		}
	}
	if changed != 1 {
		return failed(MultiFieldEdit, multiMsg)
	}
	return nil
}

// Named pairs a record id with its human-readable name for the uniqueness
// scan.
type Named struct {
	ID   string
	Name string
}

// Unique reports a duplicate-name failure when another record of the kind
// already carries value. The record under update is excluded by id so an
// unchanged name does not collide with itself.
func (s Schema) Unique(value, excludeID string, existing []Named) *Error {
	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if other.Name == value {
			return failed(DuplicateName, s.DuplicateMsg)
		}
	}
	return nil
}
