// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	healthfeature "github.com/dalemusser/showmate/internal/app/features/health"
	notificationsfeature "github.com/dalemusser/showmate/internal/app/features/notifications"
	projectsfeature "github.com/dalemusser/showmate/internal/app/features/projects"
	"github.com/dalemusser/showmate/internal/app/membership"
	auditstore "github.com/dalemusser/showmate/internal/app/store/audit"
	eventstore "github.com/dalemusser/showmate/internal/app/store/events"
	membershipstore "github.com/dalemusser/showmate/internal/app/store/memberships"
	messagestore "github.com/dalemusser/showmate/internal/app/store/messages"
	notificationstore "github.com/dalemusser/showmate/internal/app/store/notifications"
	poststore "github.com/dalemusser/showmate/internal/app/store/posts"
	projectstore "github.com/dalemusser/showmate/internal/app/store/projects"
	userstore "github.com/dalemusser/showmate/internal/app/store/users"
	"github.com/dalemusser/showmate/internal/app/system/auditlog"
	"github.com/dalemusser/showmate/internal/app/system/auth"
	"github.com/dalemusser/showmate/internal/app/system/invitelink"
	"github.com/dalemusser/showmate/internal/app/system/mailer"
	"github.com/dalemusser/showmate/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Version is reported by GET /health. Set with -ldflags at build time.
var Version = "dev"

// limiters started by BuildHandler; Shutdown stops them.
var limiters []*ratelimit.Limiter

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// Showmate wires every store into the membership service, then mounts the
// health, project and notification routers. All project and notification
// routes except the anonymous decline require a bearer token.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	verifier, err := auth.NewJWTVerifier(appCfg.JWTSecret, appCfg.JWTIssuer)
	if err != nil {
		logger.Error("jwt verifier init failed", zap.Error(err))
		return nil, err
	}

	links, err := invitelink.New(appCfg.LinkSecret, appCfg.BaseURL, appCfg.LinkMaxAge)
	if err != nil {
		logger.Error("invite link signer init failed", zap.Error(err))
		return nil, err
	}

	smtp := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	db := deps.MongoDatabase
	notifications := notificationstore.New(db)
	audits := auditstore.New(db)

	svc := membership.New(membership.Deps{
		Memberships:   membershipstore.New(db),
		Notifications: notifications,
		Users:         userstore.New(db),
		Projects:      projectstore.New(db),
		Events:        eventstore.New(db),
		Posts:         poststore.New(db),
		Messages:      messagestore.New(db),
		Mail:          mailer.NewGateway(smtp, appCfg.MailFromName),
		Links:         links,
		Audit:         auditlog.New(audits, logger, auditlog.Config{Membership: appCfg.AuditLogMembership}),
		AuditTrail:    audits,
		Logger:        logger,
	})

	proxies, err := ratelimit.NewProxyTrust(appCfg.TrustedProxies)
	if err != nil {
		logger.Error("trusted proxy list invalid", zap.Error(err))
		return nil, err
	}

	inviteLimiter := ratelimit.New(appCfg.InviteRateLimit, time.Minute)
	refuseLimiter := ratelimit.New(appCfg.RefuseRateLimit, time.Minute)
	limiters = append(limiters, inviteLimiter, refuseLimiter)

	requireAuth := auth.RequireBearer(verifier, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, Version, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Invitation and membership lifecycle
	projectsHandler := projectsfeature.NewHandler(svc, links, logger)
	r.Mount("/project", projectsfeature.Routes(projectsHandler, projectsfeature.Middleware{
		RequireAuth: requireAuth,
		InviteLimit: ratelimit.Middleware(inviteLimiter, ratelimit.ByCaller, logger),
		RefuseLimit: ratelimit.Middleware(refuseLimiter, proxies.ClientIP, logger),
	}))

	// Mailbox and live change stream
	notificationsHandler := notificationsfeature.NewHandler(svc, notifications, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, requireAuth))

	return r, nil
}
