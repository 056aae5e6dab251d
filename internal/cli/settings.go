package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/spf13/cobra"
)

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "settings",
		Short:       "Show or change your account settings",
		Annotations: authOnly(),
	}

	show := &cobra.Command{
		Use:  "show",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.Settings(cmd.Context())
			if err != nil {
				return err
			}
			renderSettings(cmd.OutOrStdout(), res)
			return nil
		},
	}

	var (
		name      string
		pageSize  int
		currency  string
		goal      int
		emailSync bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change the settings given as flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			req := &dtos.SettingsRequest{}
			if changed("display-name") {
				req.DisplayName = &name
			}
			if changed("page-size") {
				req.DefaultPageSize = &pageSize
			}
			if changed("currency") {
				req.SalaryCurrency = &currency
			}
			if changed("weekly-goal") {
				req.WeeklyGoal = &goal
			}
			if changed("email-sync") {
				req.EmailSync = &emailSync
			}
			res, err := a.api.UpdateSettings(cmd.Context(), req)
			if err != nil {
				return err
			}
			renderSettings(cmd.OutOrStdout(), res)
			return nil
		},
	}
	set.Flags().StringVar(&name, "display-name", "", "name shown in the dashboard")
	set.Flags().IntVar(&pageSize, "page-size", 0, "default jobs per page")
	set.Flags().StringVar(&currency, "currency", "", "preferred salary currency")
	set.Flags().IntVar(&goal, "weekly-goal", 0, "applications per week")
	set.Flags().BoolVar(&emailSync, "email-sync", false, "update statuses from the inbox")

	cmd.AddCommand(show, set)
	return cmd
}

func renderSettings(w io.Writer, s dtos.SettingsResponse) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"Email", s.Email},
		{"Display name", s.DisplayName},
		{"Page size", s.DefaultPageSize},
		{"Salary currency", s.SalaryCurrency},
		{"Weekly goal", s.WeeklyGoal},
		{"Email sync", s.EmailSync},
	})
	t.Render()
}
