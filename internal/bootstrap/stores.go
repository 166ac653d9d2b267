package bootstrap

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/config"
	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	mongorepo "github.com/ArowuTest/retail-loyalty-backend/internal/repositories/mongodb"
	mysqlrepo "github.com/ArowuTest/retail-loyalty-backend/internal/repositories/mysql"
	"github.com/ArowuTest/retail-loyalty-backend/pkg/mongodb"
	"github.com/ArowuTest/retail-loyalty-backend/pkg/mysql"
)

const closeTimeout = 10 * time.Second

// OpenStores connects the configured backend, prepares its schema and
// returns its repositories with a func that closes the connection.
func OpenStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (repositories.Stores, func(), error) {
	switch cfg.Store.Driver {
	case "mysql":
		db, err := mysql.NewClient(ctx, cfg.MySQL, log)
		if err != nil {
			return repositories.Stores{}, nil, err
		}
		if cfg.MySQL.AutoMigrate {
			if err := mysqlrepo.AutoMigrate(db); err != nil {
				_ = mysql.Close(db)
				return repositories.Stores{}, nil, err
			}
		}
		return mysqlrepo.NewStores(db), func() {
			if err := mysql.Close(db); err != nil {
				log.Warnw("error closing mysql", "error", err)
			}
		}, nil
	default:
		client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, log)
		if err != nil {
			return repositories.Stores{}, nil, err
		}
		disconnect := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				log.Warnw("error disconnecting from mongodb", "error", err)
			}
		}
		if err := mongorepo.EnsureIndexes(ctx, client.Database()); err != nil {
			disconnect()
			return repositories.Stores{}, nil, err
		}
		return mongorepo.NewStores(client.Mongo(), client.Database()), disconnect, nil
	}
}
