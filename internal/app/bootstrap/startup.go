// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	auditstore "github.com/dalemusser/showmate/internal/app/store/audit"
	membershipstore "github.com/dalemusser/showmate/internal/app/store/memberships"
	notificationstore "github.com/dalemusser/showmate/internal/app/store/notifications"
	projectstore "github.com/dalemusser/showmate/internal/app/store/projects"
	"github.com/dalemusser/showmate/internal/app/system/auditlog"
	"github.com/dalemusser/showmate/internal/app/system/timeouts"
	"github.com/dalemusser/showmate/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: it
// applies the configured timeouts and starts the orphan sweeper.
//
// WAFFLE passes DBDeps by value, so the sweeper started here is reached
// again through the package-level handle used by Shutdown.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	if appCfg.SweepInterval <= 0 {
		logger.Info("orphan sweeper disabled")
		return nil
	}

	db := deps.MongoDatabase
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{Membership: appCfg.AuditLogMembership})
	sweeper = workers.NewOrphanSweep(
		projectstore.New(db),
		membershipstore.New(db),
		notificationstore.New(db),
		audit,
		logger,
		appCfg.SweepInterval,
	)
	sweeper.Start()
	return nil
}

// sweeper is the running orphan sweeper, if any.
var sweeper *workers.OrphanSweep
