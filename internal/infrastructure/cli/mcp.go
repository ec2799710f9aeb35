package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	inframcp "github.com/felixgeelhaar/pulse/internal/infrastructure/mcp"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Pulse MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		server := inframcp.NewServer(services)
		switch strings.ToLower(mcpTransport) {
		case "stdio", "":
			return server.StartStdio()
		case "http":
			return server.StartHTTP(mcpAddr)
		default:
			return fmt.Errorf("unsupported transport: %s", mcpTransport)
		}
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for the http transport")
	RootCmd.AddCommand(mcpCmd)
}
