package repositories

import (
	"github.com/jrazmi/tasklists/core/repositories/usersrepo"
	"github.com/jrazmi/tasklists/infrastructure/datastores"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// NewGateway returns the gateway for whichever backend ds has open.
func NewGateway(log *logger.Logger, ds *datastores.Datastore, hasher usersrepo.Hasher) Gateway {
	if ds.Postgres != nil {
		return NewPostgresGateway(log, ds.Postgres, hasher)
	}
	return NewSQLGateway(log, ds.SQL, hasher)
}
