// Package platform detects the platform family of the local machine.
//
// The platform family keys the tool strategy table: probes and actions are
// selected once at startup for the detected family, keeping the provisioning
// engine itself platform-agnostic.
package platform

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
)

// ErrUnsupported is returned when no strategy table exists for the local machine.
var ErrUnsupported = errors.New("unsupported platform")

// Detect determines the platform family of the local machine. Linux machines
// are classified into package-manager families via /etc/os-release; WSL is
// detected before Linux classification since it reports GOOS "linux".
func Detect() (v1alpha1.Platform, error) {
	return detect(runtime.GOOS, readFileTrimmed, os.Getenv)
}

func detect(
	goos string,
	readFile func(string) string,
	getenv func(string) string,
) (v1alpha1.Platform, error) {
	switch goos {
	case "darwin":
		return v1alpha1.PlatformDarwin, nil
	case "windows":
		return v1alpha1.PlatformWindows, nil
	case "linux":
		if IsWSL(readFile("/proc/version"), getenv("WSL_DISTRO_NAME")) {
			return v1alpha1.PlatformWSL, nil
		}

		return ClassifyLinux(readFile("/etc/os-release"))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, goos)
	}
}

// IsWSL reports whether a Linux environment is actually Windows Subsystem for
// Linux, based on the kernel version string and the WSL_DISTRO_NAME variable.
func IsWSL(procVersion, wslDistroName string) bool {
	if wslDistroName != "" {
		return true
	}

	return strings.Contains(strings.ToLower(procVersion), "microsoft")
}

// ClassifyLinux maps /etc/os-release content to a package-manager family.
// Classification uses ID first and falls back to ID_LIKE, so derivatives
// (Linux Mint, Rocky, Alma) resolve to their parent family.
func ClassifyLinux(osRelease string) (v1alpha1.Platform, error) {
	id := osReleaseField(osRelease, "ID")
	idLike := osReleaseField(osRelease, "ID_LIKE")

	switch {
	case isAptDistro(id) || containsAny(idLike, "debian", "ubuntu"):
		return v1alpha1.PlatformApt, nil
	case isDnfDistro(id) || containsAny(idLike, "fedora", "rhel", "centos"):
		return v1alpha1.PlatformDnf, nil
	default:
		return "", fmt.Errorf("%w: linux distribution %q", ErrUnsupported, id)
	}
}

func isAptDistro(id string) bool {
	switch id {
	case "debian", "ubuntu", "linuxmint", "pop", "raspbian":
		return true
	default:
		return false
	}
}

func isDnfDistro(id string) bool {
	switch id {
	case "fedora", "rhel", "centos", "rocky", "almalinux", "amzn":
		return true
	default:
		return false
	}
}

// osReleaseField extracts a single KEY=value field from os-release content,
// trimming surrounding quotes.
func osReleaseField(content, key string) string {
	for _, line := range strings.Split(content, "\n") {
		value, found := strings.CutPrefix(strings.TrimSpace(line), key+"=")
		if found {
			return strings.Trim(value, `"'`)
		}
	}

	return ""
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}

	return false
}

// readFileTrimmed reads a file and returns its content, or an empty string
// when the file cannot be read. Detection treats unreadable files as absent.
func readFileTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return string(data)
}
