package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/causeway/internal/domain"
)

// Open connects to the database and verifies the connection
func Open(ctx context.Context, driver, dsn string) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, 0, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, dialect, nil
}

// Repositories groups one repository per entity type
type Repositories struct {
	Users        *Repository[*domain.User]
	Sessions     *Repository[*domain.Session]
	Groups       *Repository[*domain.Group]
	Causes       *Repository[*domain.Cause]
	Objectives   *Repository[*domain.Objective]
	Signatures   *Repository[*domain.Signature]
	ActivityLogs *Repository[*domain.ActivityLog]
}

// NewRepositories creates every repository over db
func NewRepositories(db *sql.DB, d Dialect, logger *zap.Logger) *Repositories {
	return &Repositories{
		Users:        NewRepository(db, d, Users, logger),
		Sessions:     NewRepository(db, d, Sessions, logger),
		Groups:       NewRepository(db, d, Groups, logger),
		Causes:       NewRepository(db, d, Causes, logger),
		Objectives:   NewRepository(db, d, Objectives, logger),
		Signatures:   NewRepository(db, d, Signatures, logger),
		ActivityLogs: NewRepository(db, d, ActivityLogs, logger),
	}
}
