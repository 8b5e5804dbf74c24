// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/showmate/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devSecret is the development default for jwt_secret and link_secret.
// ValidateConfig refuses it in production.
const devSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for Showmate.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: SHOWMATE_MONGO_URI, SHOWMATE_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "showmate", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Identity
	{Name: "jwt_secret", Default: devSecret, Desc: "HS256 secret for bearer tokens (must be strong in production)"},
	{Name: "jwt_issuer", Default: "", Desc: "Expected token issuer (blank accepts any)"},

	// Invitation links
	{Name: "link_secret", Default: devSecret, Desc: "Signing key for emailed accept links (32+ bytes)"},
	{Name: "link_max_age", Default: "168h", Desc: "Accept link lifetime (e.g., 72h, 168h)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@showmate.app", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Showmate", Desc: "From display name"},

	// Base URL for email links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links"},

	// Audit logging settings
	{Name: "audit_log_membership", Default: "all", Desc: "Membership event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Workers
	{Name: "sweep_interval", Default: "1h", Desc: "Orphan sweep interval (0 disables)"},

	// Rate limits
	{Name: "invite_rate_limit", Default: 30, Desc: "Invitations per user per minute"},
	{Name: "refuse_rate_limit", Default: 20, Desc: "Anonymous declines per IP per minute"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated proxy IPs/CIDRs allowed to set X-Forwarded-For"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for single-workflow writes"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for invites and project teardown"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, SHOWMATE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SHOWMATE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),

		LinkSecret: appValues.String("link_secret"),
		LinkMaxAge: appValues.Duration("link_max_age", 7*24*time.Hour),

		// Email/SMTP
		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL: appValues.String("base_url"),

		AuditLogMembership: appValues.String("audit_log_membership"),

		SweepInterval: appValues.Duration("sweep_interval", time.Hour),

		InviteRateLimit: appValues.Int("invite_rate_limit"),
		RefuseRateLimit: appValues.Int("refuse_rate_limit"),
		TrustedProxies:  splitList(appValues.String("trusted_proxies")),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if len(appCfg.LinkSecret) < 32 {
		return fmt.Errorf("link_secret must be at least 32 bytes")
	}
	if coreCfg.Env == "prod" && (appCfg.JWTSecret == devSecret || appCfg.LinkSecret == devSecret) {
		return fmt.Errorf("jwt_secret and link_secret must be changed from their development defaults in prod")
	}
	if _, err := ratelimit.NewProxyTrust(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted_proxies: %w", err)
	}
	switch appCfg.AuditLogMembership {
	case "", "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log_membership must be one of all, db, log, off (got %q)", appCfg.AuditLogMembership)
	}
	return nil
}

// splitList splits a comma-separated config value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
