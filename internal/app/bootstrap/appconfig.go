// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries what is specific to Showmate: the Mongo connection,
// bearer-token verification, invitation links, SMTP, audit and worker
// settings.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens issued by the identity provider
	JWTSecret string // HS256 shared secret
	JWTIssuer string // expected "iss" claim; blank accepts any issuer

	// Signed accept links embedded in invitation emails
	LinkSecret string        // securecookie hash key (at least 32 bytes)
	LinkMaxAge time.Duration // how long an emailed accept link stays valid

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@showmate.app)
	MailFromName string // From display name (e.g., Showmate)

	// Base URL for email links
	BaseURL string // e.g., "https://showmate.app" or "http://localhost:3000"

	// Audit logging: 'all' (db+log), 'db', 'log', or 'off'
	AuditLogMembership string

	// Background work
	SweepInterval time.Duration // orphan sweep period; 0 disables the sweeper

	// Per-caller request limits (requests per minute)
	InviteRateLimit int
	RefuseRateLimit int

	// Proxies (CIDRs or IPs) whose X-Forwarded-For is believed when keying
	// per-IP limits. Empty means requests are keyed by their direct peer.
	TrustedProxies []string

	// Store/gateway call timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
