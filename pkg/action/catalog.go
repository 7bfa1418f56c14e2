package action

// Package-manager and service helpers shared by the built-in tool catalog.
// Privileged managers go through sudo so the user is prompted once instead of
// the whole program requiring root.

// BrewInstall installs a Homebrew formula.
func BrewInstall(runner Runner, formula string) Action {
	return Command(runner, "brew", "install", formula)
}

// BrewInstallCask installs a Homebrew cask, used for GUI applications such as
// Docker Desktop.
func BrewInstallCask(runner Runner, cask string) Action {
	return Command(runner, "brew", "install", "--cask", cask)
}

// AptGetInstall refreshes the package index and installs packages via apt-get.
// The index refresh keeps installs working on freshly provisioned machines
// where the cache has never been populated.
func AptGetInstall(runner Runner, packages ...string) Action {
	installArgs := append([]string{"apt-get", "install", "-y"}, packages...)

	return Sequence(
		Command(runner, "sudo", "apt-get", "update"),
		Command(runner, "sudo", installArgs...),
	)
}

// DnfInstall installs packages via dnf.
func DnfInstall(runner Runner, packages ...string) Action {
	args := append([]string{"dnf", "install", "-y"}, packages...)

	return Command(runner, "sudo", args...)
}

// ChocoInstall installs a Chocolatey package.
func ChocoInstall(runner Runner, pkg string) Action {
	return Command(runner, "choco", "install", "-y", pkg)
}

// PipInstall installs a Python package for the current user.
func PipInstall(runner Runner, pkg string) Action {
	return Command(runner, "pip3", "install", "--user", pkg)
}

// SystemctlStart starts and enables a systemd unit so the service survives
// reboots.
func SystemctlStart(runner Runner, unit string) Action {
	return Command(runner, "sudo", "systemctl", "enable", "--now", unit)
}

// OpenApp launches a macOS application bundle by name.
func OpenApp(runner Runner, app string) Action {
	return Command(runner, "open", "-a", app)
}

// BrewServicesStart starts a Homebrew-managed service.
func BrewServicesStart(runner Runner, service string) Action {
	return Command(runner, "brew", "services", "start", service)
}
