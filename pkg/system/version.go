package system

var (
	// Version is overridden at build time via -ldflags.
	Version = "0.0.0-dev"
	// Commit is the git revision the binary was built from.
	Commit = ""
)

// VersionString returns the human readable version, including the commit
// when one was injected at build time.
func VersionString() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
