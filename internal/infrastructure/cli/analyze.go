package cli

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pulse/pkg/domain/insight"
)

var velocityDays int

var healthCmd = &cobra.Command{
	Use:   "health <project-id>",
	Short: "Compute the weighted health score of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		report, err := services.Analysis.ProjectHealth(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var workloadCmd = &cobra.Command{
	Use:   "workload <project-id>",
	Short: "Classify the team by task load",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		report, err := services.Analysis.TeamWorkload(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var bottlenecksCmd = &cobra.Command{
	Use:   "bottlenecks <project-id>",
	Short: "Detect overloaded people, stalled tasks, and threatened milestones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		report, err := services.Analysis.Bottlenecks(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var milestonesCmd = &cobra.Command{
	Use:   "milestones <project-id>",
	Short: "Assess the completion risk of every active milestone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		report, err := services.Analysis.MilestoneRisks(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var velocityCmd = &cobra.Command{
	Use:   "velocity <project-id>",
	Short: "Compute task completion rate and trend over a trailing window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		report, err := services.Analysis.Velocity(cmd.Context(), args[0], velocityDays)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

func init() {
	velocityCmd.Flags().IntVar(&velocityDays, "days", insight.VelocityWindowDays, "Trailing window in days")
	RootCmd.AddCommand(healthCmd, workloadCmd, bottlenecksCmd, milestonesCmd, velocityCmd)
}
