// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/garyellow/xoso-linebot-go/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/garyellow/xoso-linebot-go/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/garyellow/xoso-linebot-go/internal/buildinfo.BuildDate=...
var BuildDate = ""

// String formats the build metadata for version output.
func String() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit != "" {
		v += " (" + Commit + ")"
	}
	if BuildDate != "" {
		v += " built " + BuildDate
	}
	return v
}
