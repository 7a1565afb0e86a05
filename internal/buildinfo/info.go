package buildinfo

var (
	// Version will be set via ldflags during build.
	Version = "dev"
	// Commit will be set via ldflags during build.
	Commit = "none"
	// Date will be set via ldflags during build.
	Date = "unknown"
)

// UserAgent identifies this build in backend requests.
func UserAgent() string {
	return "tallyx/" + Version
}

// String is the version line shown by the CLI.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
