// internal/app/system/limits/limits.go
package limits

// Request body size limits for the JSON API.
const (
	// MaxJSONBody caps every JSON request body.
	MaxJSONBody = 64 << 10 // 64 KB

	// MaxInviteBody caps POST /project/invite, whose selectedEvents list is
	// the only unbounded field.
	MaxInviteBody = 256 << 10 // 256 KB

	// MaxNotificationsPage is the largest mailbox page a client may request.
	MaxNotificationsPage = 200

	// DefaultNotificationsPage is used when the client does not ask for a size.
	DefaultNotificationsPage = 50

	// MaxAuditPage and DefaultAuditPage bound GET /project/audit.
	MaxAuditPage     = 200
	DefaultAuditPage = 50
)
