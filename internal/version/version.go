package version

import "fmt"

// Populated at build time using -ldflags "-X github.com/PizzaHomicide/usercard/internal/version.Version=..."
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// GetVersion returns the current version of the application
func GetVersion() string {
	return Version
}

// GetBuildTime returns the build time of the binary
func GetBuildTime() string {
	return BuildTime
}

// GetVersionInfo returns a single line describing the build, as printed by `usercard version`
func GetVersionInfo() string {
	return fmt.Sprintf("usercard v%s (built %s)", Version, BuildTime)
}
