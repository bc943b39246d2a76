// ABOUTME: Build and product identification
// ABOUTME: Version is overridden at link time with -ldflags "-X"
package version

import (
	"fmt"
	"runtime"
)

// Version is the release version
var Version = "0.1.0"

const (
	Product      = "musics"
	Manufacturer = "musics-player"
)

// String renders the version line printed by the CLI
func String() string {
	return fmt.Sprintf("%s %s (%s/%s, %s)", Product, Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
