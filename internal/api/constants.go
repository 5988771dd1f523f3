package api

// API limits and constants.
const (
	// DefaultMaxUploadSize caps multipart bodies when Options leaves it unset (10 MB).
	DefaultMaxUploadSize = 10 << 20

	// multipartMemory is how much of a multipart body is buffered in memory
	// before spilling to temp files.
	multipartMemory = 1 << 20

	// DefaultAuthRatePerMinute applies when Options leaves it unset.
	DefaultAuthRatePerMinute = 20
)

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
	CacheNoStore = "no-cache"
)
