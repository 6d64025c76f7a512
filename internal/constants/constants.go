// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort            = "4000"
	DefaultDBDriver        = "sqlite"
	DefaultDBDSN           = "mixtape.db"
	DefaultBlobBackend     = "disk"
	DefaultUploadsDir      = "_server-data/uploads"
	DefaultMaxUploadMB     = 100
	DefaultFFprobePath     = "ffprobe"
	DefaultMinioBucket     = "mixtape"
	DefaultCORSOrigins     = "*"
	DefaultProbeTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	ServiceName            = "mixtape-backend"
)

// Supported database drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Blob store backends
const (
	BackendDisk  = "disk"
	BackendMinio = "minio"
)

// Public URL prefixes
const (
	UploadsURLPrefix = "/uploads/"
)

// Multipart form fields for the upload endpoint
const (
	FormFieldAudio  = "audio"
	FormFieldTitle  = "title"
	FormFieldUserID = "user_id"
)

// MIME Types
const (
	MimeTypeFLAC = "audio/flac"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeJSON = "application/json"
)

// File Extensions
const (
	ExtFLAC = ".flac"
	ExtMP3  = ".mp3"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Multipart parsing keeps at most this much of an upload in memory before spilling to disk.
const MultipartMemory = 32 << 20

// Longest sanitized original-name component kept in a stored filename.
const MaxStoredNameLength = 100

// ContentTypeForExt maps a blob extension to the Content-Type it is served with.
// Anything that is not FLAC is served as MP3.
func ContentTypeForExt(ext string) string {
	if ext == ExtFLAC {
		return MimeTypeFLAC
	}
	return MimeTypeMP3
}
