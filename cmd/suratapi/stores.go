package main

import (
	"context"
	"database/sql"
	"fmt"

	"suratapi/internal/database"
	"suratapi/internal/database/migration"
	handlers "suratapi/internal/http/handler"
	"suratapi/internal/model"
	"suratapi/internal/repository"
	"suratapi/internal/repository/memory"
	"suratapi/internal/repository/postgres"
	"suratapi/internal/service"
	"suratapi/internal/storage"
)

// stores is the repository set picked by STORE.
type stores struct {
	letters       repository.LetterRepository
	units         repository.UnitRepository
	classes       repository.ClassificationRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	audit         repository.AuditRepository
	checks        []handlers.Check
	close         func() error
}

func (s *stores) catalogs() (service.Catalog[model.Unit], service.Catalog[model.Classification], service.Catalog[model.User]) {
	return service.NewUnitCatalog(s.units), service.NewClassificationCatalog(s.classes), service.NewUserCatalog(s.users, s.units)
}

// openStores connects the configured backend. Postgres is migrated on open
// when its schema is missing.
func (a *app) openStores(ctx context.Context) (*stores, error) {
	switch a.cfg.Store {
	case "memory":
		a.log.Warn().Msg("using in-memory store; data is lost on exit")
		return &stores{
			letters:       memory.NewLetterStore(a.loc),
			units:         memory.NewUnitStore(),
			classes:       memory.NewClassificationStore(),
			users:         memory.NewUserStore(),
			notifications: memory.NewNotificationStore(),
			audit:         memory.NewAuditStore(),
			close:         func() error { return nil },
		}, nil
	case "postgres":
		db, err := a.openDB(ctx)
		if err != nil {
			return nil, err
		}
		if err := migration.EnsureMigrated(ctx, db, a.log, a.cfg.Database.Host); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			letters:       postgres.NewLetterPostgres(db, a.loc),
			units:         postgres.NewUnitPostgres(db),
			classes:       postgres.NewClassificationPostgres(db),
			users:         postgres.NewUserPostgres(db),
			notifications: postgres.NewNotificationPostgres(db),
			audit:         postgres.NewAuditPostgres(db),
			checks:        []handlers.Check{{Name: "database", Ping: db.PingContext}},
			close:         db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE %q (want postgres or memory)", a.cfg.Store)
	}
}

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := database.NewPostgres(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// openStorage returns MinIO when an endpoint is configured and an in-memory
// object store otherwise.
func (a *app) openStorage(ctx context.Context) (storage.Storage, error) {
	if a.cfg.MinIO.Endpoint == "" {
		a.log.Warn().Msg("MINIO_ENDPOINT not set; attachments are kept in memory")
		return storage.NewMemory(), nil
	}
	s, err := storage.NewMinIO(ctx, a.cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	return s, nil
}
