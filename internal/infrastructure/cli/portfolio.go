package cli

import (
	"github.com/spf13/cobra"
)

var portfolioInsights bool

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Aggregate health, workload, and risk across every active project",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		report, err := services.Portfolio.Analyze(cmd.Context())
		if err != nil {
			return err
		}
		if !portfolioInsights {
			return printJSON(report)
		}
		return printJSON(map[string]any{
			"portfolio": report,
			"insights":  services.Portfolio.Insights(cmd.Context(), report),
		})
	},
}

func init() {
	portfolioCmd.Flags().BoolVar(&portfolioInsights, "insights", false, "Generate an executive narrative for the report")
	RootCmd.AddCommand(portfolioCmd)
}
