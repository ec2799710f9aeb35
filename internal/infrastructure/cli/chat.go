package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <project-id> <query...>",
	Short: "Ask the project's conversational agent a question",
	Long: `Ask the project's conversational agent a question.

The agent answers by calling read-only tools against the store; it never
invents data. Each invocation is an independent conversation turn.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		query := strings.Join(args[1:], " ")
		result, err := services.Agent.Chat(cmd.Context(), args[0], query)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	RootCmd.AddCommand(chatCmd)
}
