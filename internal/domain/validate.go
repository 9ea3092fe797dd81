package domain

import (
	"strings"

	"github.com/conduit-lang/causeway/internal/resource"
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func required(attr string) error {
	return &resource.FieldError{Pointer: resource.AttributePointer(attr), Detail: "must not be blank"}
}

// Validate implements Validator
func (u *User) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return &resource.FieldError{Pointer: resource.AttributePointer("email"), Detail: "must be an email address"}
	}
	return nil
}

// Validate implements Validator
func (s *Session) Validate() error {
	if blank(s.UserID) {
		return &resource.FieldError{Pointer: resource.RelationshipPointer("user"), Detail: "must reference a user"}
	}
	return nil
}

// Validate implements Validator
func (g *Group) Validate() error {
	if blank(g.Name) {
		return required("name")
	}
	return nil
}

// Validate implements Validator
func (c *Cause) Validate() error {
	if blank(c.Title) {
		return required("title")
	}
	// new causes start as drafts
	if c.Status == "" {
		c.Status = CauseDraft
	}
	return nil
}

// Validate implements Validator
func (o *Objective) Validate() error {
	if blank(o.CauseID) {
		return &resource.FieldError{Pointer: resource.RelationshipPointer("cause"), Detail: "must reference a cause"}
	}
	if o.Target <= 0 {
		return &resource.FieldError{Pointer: resource.AttributePointer("target"), Detail: "must be positive"}
	}
	return nil
}

// Validate implements Validator
func (s *Signature) Validate() error {
	if blank(s.CauseID) {
		return &resource.FieldError{Pointer: resource.RelationshipPointer("cause"), Detail: "must reference a cause"}
	}
	if !s.Anonymous && blank(s.Name) {
		return required("name")
	}
	return nil
}

// Validate implements Validator
func (l *ActivityLog) Validate() error {
	if blank(l.CauseID) {
		return &resource.FieldError{Pointer: resource.RelationshipPointer("cause"), Detail: "must reference a cause"}
	}
	if blank(l.Kind) {
		return required("kind")
	}
	return nil
}
