package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pulse/pkg/application"
)

var recommendAI bool

var recommendCmd = &cobra.Command{
	Use:   "recommend <project-id>",
	Short: "Generate actionable recommendations to improve project health",
	Long: `Generate actionable recommendations to improve project health.

By default the deterministic rule battery is used. With --ai the model
generates context-aware recommendations; if its output cannot be made to
satisfy the contract, the command falls back to the rules.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}

		if recommendAI {
			list, err := services.Recommendation.AI(cmd.Context(), args[0])
			if err == nil {
				return printJSON(list)
			}
			if !errors.Is(err, application.ErrMalformedAIResponse) {
				return err
			}
			fmt.Fprintf(os.Stderr, "Warning: %v; falling back to rules\n", err)
		}

		list, err := services.Recommendation.Rules(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(list)
	},
}

func init() {
	recommendCmd.Flags().BoolVar(&recommendAI, "ai", false, "Use the AI strategy instead of the rule battery")
	RootCmd.AddCommand(recommendCmd)
}
