package http

import (
	"github.com/samirrijal/dronepath/internal/adapters/broadcast"
	natsadapter "github.com/samirrijal/dronepath/internal/adapters/nats"
	"github.com/samirrijal/dronepath/internal/adapters/postgres"
	"github.com/samirrijal/dronepath/internal/adapters/valkey"
	"github.com/samirrijal/dronepath/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// Only Sessions is required; the rest may be nil when disabled.
type Dependencies struct {
	Sessions *usecases.SessionService
	Library  *usecases.LibraryService
	Hub      *broadcast.Hub
	NATS     *natsadapter.Publisher
	DB       *postgres.DB
	Cache    *valkey.Cache
}
