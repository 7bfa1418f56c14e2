// Package asciiart renders the devrig banner shown by the root command.
package asciiart

import (
	"fmt"
	"io"

	fcolor "github.com/fatih/color"
)

// PrintDevrigLogo writes the devrig ASCII banner to the writer.
func PrintDevrigLogo(writer io.Writer) {
	lines := []string{
		"     _             _      ",
		"  __| |_____ ___ _(_)__ _ ",
		" / _` / -_) V / '_| / _` |",
		" \\__,_\\___|\\_/|_| |_\\__, |",
		"                     |___/ ",
	}

	banner := fcolor.New(fcolor.FgCyan, fcolor.Bold)
	for _, line := range lines {
		_, _ = banner.Fprintln(writer, line)
	}

	_, _ = fmt.Fprintln(writer)
}
