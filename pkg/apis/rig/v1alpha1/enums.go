package v1alpha1

import (
	"fmt"
	"slices"
	"strings"
)

// --- Enum Interface ---

// EnumValuer is implemented by string-based enum types to provide their valid values.
// The schema generator uses this interface to automatically discover enum constraints.
type EnumValuer interface {
	// ValidValues returns all valid string values for this enum type.
	ValidValues() []string
}

// --- Platform Types ---

// Platform identifies the platform family used to select tool strategies.
// It keys the strategy table: every tool descriptor binds its probes and
// actions per platform family rather than per concrete OS release.
type Platform string

const (
	// PlatformDarwin is macOS (Homebrew-based strategies).
	PlatformDarwin Platform = "darwin"
	// PlatformApt is the Debian/Ubuntu Linux family (apt-get based strategies).
	PlatformApt Platform = "apt"
	// PlatformDnf is the Fedora/RHEL Linux family (dnf based strategies).
	PlatformDnf Platform = "dnf"
	// PlatformWindows is native Windows (Chocolatey-based strategies).
	PlatformWindows Platform = "windows"
	// PlatformWSL is Windows Subsystem for Linux (apt strategies with Windows interop).
	PlatformWSL Platform = "wsl"
)

// ValidPlatforms returns all supported platform families.
func ValidPlatforms() []Platform {
	return []Platform{
		PlatformDarwin,
		PlatformApt,
		PlatformDnf,
		PlatformWindows,
		PlatformWSL,
	}
}

// PackageManager returns the platform family's package manager command.
func (p *Platform) PackageManager() string {
	switch *p {
	case PlatformDarwin:
		return "brew"
	case PlatformApt, PlatformWSL:
		return "apt-get"
	case PlatformDnf:
		return "dnf"
	case PlatformWindows:
		return "choco"
	default:
		return ""
	}
}

// IsLinuxFamily returns true for platform families backed by a Linux userland.
func (p *Platform) IsLinuxFamily() bool {
	switch *p {
	case PlatformApt, PlatformDnf, PlatformWSL:
		return true
	case PlatformDarwin, PlatformWindows:
		return false
	default:
		return false
	}
}

// Set for Platform (pflag.Value interface).
func (p *Platform) Set(value string) error {
	for _, plat := range ValidPlatforms() {
		if strings.EqualFold(value, string(plat)) {
			*p = plat

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %s (valid options: %s, %s, %s, %s, %s)",
		ErrInvalidPlatform,
		value,
		PlatformDarwin,
		PlatformApt,
		PlatformDnf,
		PlatformWindows,
		PlatformWSL,
	)
}

// IsValid checks if the platform value is supported.
func (p *Platform) IsValid() bool {
	return slices.Contains(ValidPlatforms(), *p)
}

// String returns the string representation of the Platform.
func (p *Platform) String() string {
	return string(*p)
}

// Type returns the type of the Platform.
func (p *Platform) Type() string {
	return "Platform"
}

// ValidValues returns all valid Platform values as strings.
func (p *Platform) ValidValues() []string {
	return []string{
		string(PlatformDarwin),
		string(PlatformApt),
		string(PlatformDnf),
		string(PlatformWindows),
		string(PlatformWSL),
	}
}
