package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/justsurfingit/jobdash/internal/client"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/spf13/cobra"
)

func (a *app) countsCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "counts",
		Short:       "Show how many tracked jobs are in each status",
		Args:        cobra.NoArgs,
		Annotations: authOnly(),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := client.NewStatusStore()
			if err := store.Refresh(cmd.Context(), a.api); err != nil {
				return err
			}
			st := store.Snapshot()

			bars := make([]bar, 0, len(models.AllStatuses))
			for _, status := range models.AllStatuses {
				bars = append(bars, bar{Label: string(status), Value: st.Counts[status]})
			}
			out := cmd.OutOrStdout()
			renderBars(out, bars, barWidth)
			fmt.Fprintf(out, "\nTotal: %d  New: %d\n", st.Total, st.NewCount)
			return nil
		},
	}
}

func (a *app) analyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "analytics",
		Short:       "Charts over your application pipeline",
		Annotations: authOnly(),
	}
	cmd.AddCommand(a.salaryCmd(), a.funnelCmd(), a.responseCmd())
	return cmd
}

func (a *app) salaryCmd() *cobra.Command {
	var (
		currency string
		bucket   int64
	)
	cmd := &cobra.Command{
		Use:   "salary",
		Short: "Salary distribution of tracked jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.SalaryDistribution(cmd.Context(), currency, bucket)
			if err != nil {
				return err
			}
			renderSalary(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "only jobs paid in this currency (default from settings)")
	cmd.Flags().Int64Var(&bucket, "bucket", 0, "bucket width (server default when 0)")
	return cmd
}

func renderSalary(cmd *cobra.Command, res dtos.SalaryDistributionResponse) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Salary distribution (%s)\n\n", res.Currency)
	if len(res.Buckets) == 0 {
		fmt.Fprintln(out, "No priced jobs.")
	}
	bars := make([]bar, 0, len(res.Buckets))
	for _, b := range res.Buckets {
		bars = append(bars, bar{Label: b.Label, Value: int64(b.Count)})
	}
	renderBars(out, bars, barWidth)
	if res.Unpriced > 0 {
		fmt.Fprintf(out, "\n%d jobs without pay information\n", res.Unpriced)
	}
}

func (a *app) funnelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "funnel",
		Short: "How far applications get",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.InterviewFunnel(cmd.Context())
			if err != nil {
				return err
			}
			bars := make([]bar, 0, len(res.Stages))
			for _, s := range res.Stages {
				bars = append(bars, bar{Label: s.Stage, Value: int64(s.Count), Note: percent(s.Conversion)})
			}
			renderBars(cmd.OutOrStdout(), bars, barWidth)
			return nil
		},
	}
}

func (a *app) responseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "response",
		Short: "Employer response rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.ResponseRates(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Work type", "Applied", "Responded", "Interviewed", "Rejected", "Ghosted", "Response", "Interview"})
			row := func(r dtos.ResponseRate) table.Row {
				return table.Row{r.Group, r.Applied, r.Responded, r.Interviewed, r.Rejected, r.Ghosted, percent(r.Rate), percent(r.InterviewRate)}
			}
			for _, r := range res.ByWorkType {
				t.AppendRow(row(r))
			}
			t.AppendFooter(row(res.Overall))
			t.Render()
			return nil
		},
	}
}
