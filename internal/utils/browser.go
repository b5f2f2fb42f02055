package utils

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// browserCommand returns the command that opens url on goos, or nil when
// there is no known opener.
func browserCommand(goos, url string) []string {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return []string{"xdg-open", url}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", url}
	case "darwin":
		return []string{"open", url}
	default:
		return nil
	}
}

// OpenBrowser opens the specified URL in the user's default browser.
// When that fails the URL is printed to w for the user to open manually.
func OpenBrowser(w io.Writer, url string) {
	args := browserCommand(runtime.GOOS, url)
	if args == nil {
		fmt.Fprintln(w, "Please open the following URL in your browser:", url)
		return
	}

	if err := exec.Command(args[0], args[1:]...).Start(); err != nil {
		fmt.Fprintln(w, "Failed to open browser. Please open the following URL manually:", url)
	}
}
