package version

import (
	"runtime"
	"time"
)

// Set through -ldflags "-X github.com/coastwatch-labs/catalog/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339)
	GoVersion = runtime.Version()
)

// String renders the build identity the way the CLI and /healthz report it.
func String() string {
	return Version + " (commit=" + Commit + ", built=" + BuildDate + ", go=" + GoVersion + ")"
}
