// Package version holds build metadata injected with -ldflags -X.
package version

// Build metadata. The defaults identify a local, unreleased build.
var (
	Version   = "0.0.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the build metadata served by the /version endpoint.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     GitCommit,
		"build_date": BuildDate,
	}
}
