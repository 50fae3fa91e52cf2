package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// printBanner prints a one-line startup banner, colored only when stdout is
// a real terminal and NO_COLOR isn't set — the same TTY-detection priority
// order pkg/log/printer's InitColorState uses in the teacher.
func printBanner(mode string) {
	colorEnabled := os.Getenv("NO_COLOR") == "" && isatty.IsTerminal(os.Stdout.Fd())
	color.NoColor = !colorEnabled

	bold := color.New(color.Bold, color.FgCyan).SprintFunc()
	fmt.Printf("%s %s\n", bold("domain-mcp"), mode)
}
