package params

import "time"

const (
	ServerBodyLimit    = 16 * 1024 * 1024 // request body ceiling, slightly above the upload cap
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	SessionKeyPrefix   = "s:"
	RateLimitKeyPrefix = "r:"

	LoginFailThreshold = 3               // consecutive failed logins before the account locks
	LoginLockDuration  = 3 * time.Minute // how long a locked account rejects logins

	MaxUploadSize = 15 * 1024 * 1024 // upload size ceiling in bytes

	TempPasswordLength = 12 // generated temporary password length for admin resets

	LoginRateLimit    = 10 // login attempts per client address per window
	UploadRateLimit   = 30 // uploads per client address per window
	DownloadRateLimit = 60 // downloads per client address per window
	AdminRateLimit    = 10 // admin mutations per client address per window

	RateLimitWindow = time.Minute

	AuditPageSize = 100 // maximum audit entries returned per listing request

	HealthCheckServerAddr = ":3001" // health check server address
)

// AllowedExtensions is the upload allow-list: documents, spreadsheets and a
// small set of archive formats. Keys are lower-case without the dot.
var AllowedExtensions = map[string]bool{
	"doc": true, "docx": true, "odt": true, "txt": true, "rtf": true,
	"pdf": true,
	"xls": true, "xlsx": true, "ods": true, "csv": true,
	"zip": true, "rar": true, "7z": true,
}
