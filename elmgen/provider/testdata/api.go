// Package testdata declares the types the source provider tests load.
package testdata

import (
	"encoding/json"
	"time"
)

// User is a registered account.
//
// Users are created by the signup flow.
//
//elm:rename_all_fields snake_case
type User struct {
	// ID is the stable identifier.
	ID        string
	Name      string `elm:"name,alias=title"`
	Email     *string
	CreatedAt time.Time
	Tags      []string
	Scores    map[string]float64
	Status    Status
	Avatar    []byte
	Extra     json.RawMessage
	Password  string `json:"-"`
	internal  int
	Audit
}

// Audit is promoted into the records that embed it.
type Audit struct {
	UpdatedBy string `json:"updated_by"`
}

// Status is an account state.
type Status string

// Point is a coordinate pair.
//
//elm:tuple
type Point struct {
	X int32
	Y int32
}

// Empty has no fields.
type Empty struct{}

// Shape is a drawable figure.
//
//elm:sum
//elm:tag kind
type Shape interface {
	isShape()
}

// Circle is round.
//
//elm:alias round
type Circle struct {
	Radius float64 `json:"radius"`
}

//elm:tuple
type Segment struct {
	From Point
	To   Point
}

//elm:rename origin
type Origin struct{}

//elm:newtype
type Labeled struct {
	Label string
}

//elm:other
type Unknown struct{}

func (Circle) isShape() {}
func (Segment) isShape() {}
func (*Origin) isShape() {}
func (Labeled) isShape() {}
func (Unknown) isShape() {}

// Secret serializes itself.
type Secret struct {
	value string
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal("***")
}

// Vault holds a secret.
type Vault struct {
	Secret Secret `json:"secret"`
	Since  time.Duration
}

// Handler is a plain interface.
type Handler interface {
	Handle()
}

// Generic types cannot be generated.
type Page[T any] struct {
	Items []T
}

// Paged instantiates a generic type.
type Paged struct {
	Users Page[User]
}

// Loose has an anonymous struct field.
type Loose struct {
	Inner struct{ X int }
}

// Listing carries every encoding/json option that changes a field's wire form.
type Listing struct {
	Cursor string   `json:"cursor,omitempty"`
	Items  []string `json:"items,omitzero"`
	Total  int64    `json:"total,string"`
	Limit  *int     `json:"limit,omitempty,string"`
	Sizes  []int    `json:"sizes,string"`
	Count  Count    `json:"count,string"`
	Next   *Listing `json:"next,omitempty"`
}

// Count is a named integer.
type Count int
