// Package version carries build metadata and the client identification
// derived from it.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Name identifies the client in outgoing requests.
const Name = "booruterm"

var (
	// Version is the application version, set via ldflags during build.
	Version = "dev"
	// GitCommit is the git commit hash, set via ldflags during build.
	GitCommit = "unknown"
	// BuildDate is the build timestamp, set via ldflags during build.
	BuildDate = "unknown"
)

// Info contains version and build metadata.
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get returns version and build information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Name, i.Version)
	fmt.Fprintf(&b, "  commit:   %s\n", i.GitCommit)
	fmt.Fprintf(&b, "  built:    %s\n", i.BuildDate)
	fmt.Fprintf(&b, "  go:       %s\n", i.GoVersion)
	fmt.Fprintf(&b, "  platform: %s\n", i.Platform)
	return b.String()
}

// UserAgent is sent to image-board APIs, e.g. "booruterm/1.2.0".
func UserAgent() string {
	return Name + "/" + Version
}

// ClientHeader is the identifying header attached to media requests made
// by the decoder, in "Name: value" form.
func ClientHeader() string {
	return "X-Client: " + UserAgent()
}
