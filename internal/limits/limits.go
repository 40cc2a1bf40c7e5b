package limits

// JSON size limits for API payloads and responses

const (
	// JSON is the size limit for API responses (4MB); view configs embed
	// HiGlass view configurations that can be large
	JSON = 4 << 20

	// ErrorBody is the maximum size for error response bodies (1KB)
	// Used when parsing error messages from failed API calls
	ErrorBody = 1024
)
