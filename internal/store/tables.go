package store

import (
	"github.com/conduit-lang/causeway/internal/domain"
)

// Users is the users table
var Users = &Table[*domain.User]{
	Name: "users",
	Columns: []Column{
		{Name: "email", Type: TypeText, Unique: true},
		{Name: "name", Type: TypeText},
		{Name: "role", Type: TypeText},
	},
	New: func() *domain.User { return &domain.User{} },
	Fields: func(u *domain.User) []any {
		return []any{&u.Email, &u.Name, &u.Role}
	},
}

// Sessions is the sessions table
var Sessions = &Table[*domain.Session]{
	Name: "sessions",
	Columns: []Column{
		{Name: "user_id", Type: TypeID, References: "users"},
		{Name: "user_agent", Type: TypeText},
		{Name: "expires_at", Type: TypeTimestamp},
	},
	Scope: "user_id",
	New:   func() *domain.Session { return &domain.Session{} },
	Fields: func(s *domain.Session) []any {
		return []any{&s.UserID, &s.UserAgent, &s.ExpiresAt}
	},
}

// Groups is the groups table
var Groups = &Table[*domain.Group]{
	Name: "cause_groups",
	Columns: []Column{
		{Name: "name", Type: TypeText},
		{Name: "description", Type: TypeText},
		{Name: "owner_id", Type: TypeID, Nullable: true, References: "users"},
	},
	New: func() *domain.Group { return &domain.Group{} },
	Fields: func(g *domain.Group) []any {
		return []any{&g.Name, &g.Description, &g.OwnerID}
	},
}

// Causes is the causes table. The signature count is derived on read.
var Causes = &Table[*domain.Cause]{
	Name: "causes",
	Columns: []Column{
		{Name: "title", Type: TypeText},
		{Name: "summary", Type: TypeText},
		{Name: "status", Type: TypeText},
		{Name: "group_id", Type: TypeID, Nullable: true, References: "cause_groups"},
	},
	Computed: []string{
		"(SELECT COUNT(*) FROM signatures WHERE signatures.cause_id = causes.id AND signatures.deleted_at IS NULL) AS signature_count",
	},
	New: func() *domain.Cause { return &domain.Cause{} },
	Fields: func(c *domain.Cause) []any {
		return []any{&c.Title, &c.Summary, &c.Status, &c.GroupID, &c.SignatureCount}
	},
}

// Objectives is the objectives table
var Objectives = &Table[*domain.Objective]{
	Name: "objectives",
	Columns: []Column{
		{Name: "cause_id", Type: TypeID, References: "causes"},
		{Name: "target", Type: TypeInteger},
		{Name: "deadline", Type: TypeTimestamp, Nullable: true},
		{Name: "status", Type: TypeInteger},
	},
	Scope: "cause_id",
	New:   func() *domain.Objective { return &domain.Objective{} },
	Fields: func(o *domain.Objective) []any {
		return []any{&o.CauseID, &o.Target, &o.Deadline, &o.Status}
	},
}

// Signatures is the signatures table
var Signatures = &Table[*domain.Signature]{
	Name: "signatures",
	Columns: []Column{
		{Name: "cause_id", Type: TypeID, References: "causes"},
		{Name: "user_id", Type: TypeID, Nullable: true, References: "users"},
		{Name: "name", Type: TypeText},
		{Name: "anonymous", Type: TypeBoolean},
		{Name: "comment", Type: TypeText},
	},
	Scope: "cause_id",
	New:   func() *domain.Signature { return &domain.Signature{} },
	Fields: func(s *domain.Signature) []any {
		return []any{&s.CauseID, &s.UserID, &s.Name, &s.Anonymous, &s.Comment}
	},
}

// ActivityLogs is the activity_logs table; count is filterable
var ActivityLogs = &Table[*domain.ActivityLog]{
	Name: "activity_logs",
	Columns: []Column{
		{Name: "cause_id", Type: TypeID, References: "causes"},
		{Name: "kind", Type: TypeText},
		{Name: "count", Type: TypeInteger},
		{Name: "message", Type: TypeText},
	},
	Filterable: map[string]string{"count": "count"},
	Scope:      "cause_id",
	New:        func() *domain.ActivityLog { return &domain.ActivityLog{} },
	Fields: func(l *domain.ActivityLog) []any {
		return []any{&l.CauseID, &l.Kind, &l.Count, &l.Message}
	},
}
