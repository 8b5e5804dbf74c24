// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/showmate/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Sweeper is started in Startup and stopped in Shutdown.
	Sweeper *workers.OrphanSweep
}
