// Package domain defines the entities exposed by the API and registers their
// conversion metadata.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the identity and lifecycle columns shared by every entity
type Base struct {
	ID        string     `jsonapi:"primary"`
	CreatedAt time.Time  `jsonapi:"attr"`
	UpdatedAt *time.Time `jsonapi:"attr"`
	DeletedAt *time.Time
}

// EntityID returns the row id
func (b Base) EntityID() string {
	return b.ID
}

// Meta returns the shared columns for in-place updates
func (b *Base) Meta() *Base {
	return b
}

// Stamp assigns an id when missing and records the creation time
func (b *Base) Stamp(now time.Time) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now.UTC()
	}
}

// Touch records a modification time
func (b *Base) Touch(now time.Time) {
	t := now.UTC()
	b.UpdatedAt = &t
}

// Entity is implemented by pointers to every domain type
type Entity interface {
	EntityID() string
	Meta() *Base
	ResourceType() string
}

// Validator is implemented by entities with creation invariants
type Validator interface {
	Validate() error
}

// User is an account holder
type User struct {
	Base
	Email string `jsonapi:"attr"`
	Name  string `jsonapi:"attr"`
	Role  string `jsonapi:"attr"`
}

// ResourceType implements Entity
func (User) ResourceType() string { return "users" }

// Session is a signed-in client of a user
type Session struct {
	Base
	UserID    string    `jsonapi:"rel,user,users"`
	UserAgent string    `jsonapi:"attr"`
	ExpiresAt time.Time `jsonapi:"attr"`
}

// ResourceType implements Entity
func (Session) ResourceType() string { return "sessions" }

// Group organizes causes under an owner
type Group struct {
	Base
	Name        string  `jsonapi:"attr"`
	Description string  `jsonapi:"attr"`
	OwnerID     *string `jsonapi:"rel,owner,users"`
}

// ResourceType implements Entity
func (Group) ResourceType() string { return "groups" }

// Cause is a petition collecting signatures
type Cause struct {
	Base
	Title          string      `jsonapi:"attr"`
	Summary        string      `jsonapi:"attr"`
	Status         CauseStatus `jsonapi:"attr"`
	GroupID        *string     `jsonapi:"rel,group,groups"`
	SignatureCount int64       `jsonapi:"attr"`
}

// ResourceType implements Entity
func (Cause) ResourceType() string { return "causes" }

// Objective is a signature target for a cause
type Objective struct {
	Base
	CauseID  string          `jsonapi:"rel,cause,causes"`
	Target   int64           `jsonapi:"attr"`
	Deadline *time.Time      `jsonapi:"attr"`
	Status   ObjectiveStatus `jsonapi:"attr"`
}

// ResourceType implements Entity
func (Objective) ResourceType() string { return "objectives" }

// Signature is one supporter's endorsement of a cause
type Signature struct {
	Base
	CauseID     string  `jsonapi:"rel,cause,causes"`
	UserID      *string `jsonapi:"rel,user,users"`
	Name        string  `jsonapi:"attr"`
	Anonymous   bool    `jsonapi:"attr"`
	Comment     string  `jsonapi:"attr"`
	DisplayName string  `jsonapi:"attr"`
}

// ResourceType implements Entity
func (Signature) ResourceType() string { return "signatures" }

// ActivityLog is an append-only event recorded against a cause
type ActivityLog struct {
	Base
	CauseID string `jsonapi:"rel,cause,causes"`
	Kind    string `jsonapi:"attr"`
	Count   int64  `jsonapi:"attr"`
	Message string `jsonapi:"attr"`
}

// ResourceType implements Entity
func (ActivityLog) ResourceType() string { return "activity-logs" }
