package version

// Set at build time with -ldflags "-X signsight/internal/version.VERSION=...".
var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
