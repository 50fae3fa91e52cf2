package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the server build version printed by the version subcommand;
// set at build time via -ldflags "-X github.com/bascanada/domain-mcp/cmd.Version=...".
// DomainModelVersion and GET /capabilities report their own fixed "1.0.0"
// and do not read this variable.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the domain-mcp server version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("domain-mcp", Version)
	},
}
