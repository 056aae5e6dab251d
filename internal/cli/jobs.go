package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/justsurfingit/jobdash/internal/apierr"
	"github.com/justsurfingit/jobdash/internal/client"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/exporter"
	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type listFlags struct {
	page     int
	pageSize int
	sort     string
	desc     bool
	search   string
	retry    bool
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "jobs per page (default from settings)")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort column: title, employerName, datePosted, minSalary, status, updatedAt")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	cmd.Flags().StringVar(&f.search, "search", "", "filter by title or employer")
	cmd.Flags().BoolVar(&f.retry, "retry", false, "retry the request once if it fails")
}

func (f *listFlags) options() []client.JobListOption {
	var opts []client.JobListOption
	if f.pageSize > 0 {
		opts = append(opts, client.WithPageSize(f.pageSize))
	}
	if f.sort != "" {
		opts = append(opts, client.WithSort(f.sort, f.desc))
	}
	if f.search != "" {
		opts = append(opts, client.WithSearch(f.search))
	}
	return opts
}

// showList loads one page of list and prints it. With --retry a failed
// request is reported and sent once more.
func (a *app) showList(cmd *cobra.Command, list *client.JobList, f *listFlags) error {
	ctx := cmd.Context()
	var err error
	if f.page > 1 {
		err = list.SetPage(ctx, f.page)
	} else {
		err = list.Load(ctx)
	}
	if err != nil && f.retry {
		printNotice(cmd.ErrOrStderr(), apierr.Classify(err))
		fmt.Fprintln(cmd.ErrOrStderr(), "Retrying...")
		err = list.Retry(ctx)
	}
	if err != nil {
		return err
	}
	renderJobList(cmd.OutOrStdout(), list.State())
	return nil
}

func (a *app) jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "jobs",
		Short:       "List, add and update tracked jobs",
		Annotations: authOnly(),
	}
	cmd.AddCommand(
		a.myJobsCmd(),
		a.recentJobsCmd(),
		a.statusJobsCmd(),
		a.searchJobsCmd(),
		a.showJobCmd(),
		a.newJobCmd(),
		a.editJobCmd(),
		a.trackJobCmd(),
		a.setStatusCmd(),
		a.untrackJobCmd(),
		a.exportJobsCmd(),
	)
	return cmd
}

func (a *app) myJobsCmd() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "my",
		Short: "List your tracked jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showList(cmd, client.NewJobList(a.api, client.EndpointMyJobs, f.options()...), &f)
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) recentJobsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently updated jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.api.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			renderJobs(cmd.OutOrStdout(), client.AdaptJobs(res.Items))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of jobs (server default when 0)")
	return cmd
}

func (a *app) statusJobsCmd() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:     "status <status>",
		Short:   "List tracked jobs in one status",
		Example: `  jobdash jobs status "Technical Assessment"` + "\n  jobdash jobs status interviewing",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParseStatus(args[0])
			if err != nil {
				return err
			}
			return a.showList(cmd, client.NewStatusJobList(a.api, status, f.options()...), &f)
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) searchJobsCmd() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search every job in the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.search = strings.Join(args, " ")
			return a.showList(cmd, client.NewJobList(a.api, client.EndpointSearch, f.options()...), &f)
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) showJobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <jobId>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := a.api.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderJob(cmd.OutOrStdout(), client.AdaptJob(job))
			return nil
		},
	}
}

// jobFlags are the editable job fields shared by new and edit.
type jobFlags struct {
	employer    string
	title       string
	workType    string
	jobType     string
	minSalary   string
	maxSalary   string
	currency    string
	city        string
	state       string
	country     string
	url         string
	posted      string
	description string
}

func (f *jobFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.employer, "employer", "", "employer name")
	fs.StringVar(&f.title, "title", "", "job title")
	fs.StringVar(&f.workType, "work-type", "", "remote, hybrid or onsite")
	fs.StringVar(&f.jobType, "job-type", "", "full-time, part-time, contract or internship")
	fs.StringVar(&f.minSalary, "min-salary", "", "lower pay bound")
	fs.StringVar(&f.maxSalary, "max-salary", "", "upper pay bound")
	fs.StringVar(&f.currency, "currency", "", "ISO currency code of the pay")
	fs.StringVar(&f.city, "city", "", "city")
	fs.StringVar(&f.state, "state", "", "state or region")
	fs.StringVar(&f.country, "country", "", "country")
	fs.StringVar(&f.url, "url", "", "posting URL")
	fs.StringVar(&f.posted, "posted", "", "posting date, YYYY-MM-DD")
	fs.StringVar(&f.description, "description", "", "job description")
}

func parseDecimal(flag, v string) (*decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("--%s: %q is not a number", flag, v)
	}
	return &d, nil
}

func parseDate(flag, v string) (*time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("--%s: %q is not a YYYY-MM-DD date", flag, v)
	}
	return &t, nil
}

// updateRequest holds only the flags that were set on cmd.
func (f *jobFlags) updateRequest(cmd *cobra.Command) (*dtos.JobUpdateRequest, error) {
	changed := cmd.Flags().Changed
	set := func(name, v string) *string {
		if !changed(name) {
			return nil
		}
		return &v
	}
	req := &dtos.JobUpdateRequest{
		EmployerName:   set("employer", f.employer),
		Title:          set("title", f.title),
		WorkType:       set("work-type", f.workType),
		JobType:        set("job-type", f.jobType),
		SalaryCurrency: set("currency", f.currency),
		City:           set("city", f.city),
		State:          set("state", f.state),
		Country:        set("country", f.country),
		URL:            set("url", f.url),
		Description:    set("description", f.description),
	}
	var err error
	if changed("min-salary") {
		if req.MinSalary, err = parseDecimal("min-salary", f.minSalary); err != nil {
			return nil, err
		}
	}
	if changed("max-salary") {
		if req.MaxSalary, err = parseDecimal("max-salary", f.maxSalary); err != nil {
			return nil, err
		}
	}
	if changed("posted") {
		if req.DatePosted, err = parseDate("posted", f.posted); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// extractedJob is the JSON the server pulls out of a posting.
type extractedJob struct {
	EmployerName   *string             `json:"employerName"`
	Title          *string             `json:"title"`
	WorkType       *string             `json:"workType"`
	JobType        *string             `json:"jobType"`
	City           *string             `json:"city"`
	State          *string             `json:"state"`
	Country        *string             `json:"country"`
	MinSalary      decimal.NullDecimal `json:"minSalary"`
	MaxSalary      decimal.NullDecimal `json:"maxSalary"`
	SalaryCurrency *string             `json:"salaryCurrency"`
	Description    *string             `json:"description"`
}

func (e extractedJob) creationRequest(sourceURL string) dtos.JobCreationRequest {
	val := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	req := dtos.JobCreationRequest{
		EmployerName:   val(e.EmployerName),
		Title:          val(e.Title),
		WorkType:       val(e.WorkType),
		JobType:        val(e.JobType),
		City:           val(e.City),
		State:          val(e.State),
		Country:        val(e.Country),
		SalaryCurrency: val(e.SalaryCurrency),
		Description:    val(e.Description),
		URL:            sourceURL,
	}
	if e.MinSalary.Valid {
		req.MinSalary = &e.MinSalary.Decimal
	}
	if e.MaxSalary.Valid {
		req.MaxSalary = &e.MaxSalary.Decimal
	}
	return req
}

func (a *app) newJobCmd() *cobra.Command {
	var (
		f        jobFlags
		status   string
		fromHTML string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Add a job and start tracking it",
		Example: "  jobdash jobs new --employer Stripe --title \"Backend Engineer\" --min-salary 150000\n" +
			"  jobdash jobs new --from-html posting.html --url https://stripe.com/jobs/123",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dtos.JobCreationRequest
			if fromHTML != "" {
				extracted, err := a.extract(cmd, fromHTML, f.url)
				if err != nil {
					return err
				}
				req = extracted
			}

			upd, err := f.updateRequest(cmd)
			if err != nil {
				return err
			}
			applyUpdate(&req, upd)
			req.Status = status
			if strings.TrimSpace(req.EmployerName) == "" || strings.TrimSpace(req.Title) == "" {
				return errors.New("--employer and --title are required")
			}

			job, err := a.api.CreateJob(cmd.Context(), &req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Job created")
			renderJob(cmd.OutOrStdout(), client.AdaptJob(job))
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&status, "status", "", "initial status (default New)")
	cmd.Flags().StringVar(&fromHTML, "from-html", "", "fill the fields from a saved job posting")
	return cmd
}

func (a *app) extract(cmd *cobra.Command, path, sourceURL string) (dtos.JobCreationRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dtos.JobCreationRequest{}, fmt.Errorf("read posting: %w", err)
	}
	data, err := a.api.ExtractJob(cmd.Context(), string(raw), sourceURL)
	if err != nil {
		return dtos.JobCreationRequest{}, err
	}
	var e extractedJob
	if err := json.Unmarshal(data, &e); err != nil {
		return dtos.JobCreationRequest{}, fmt.Errorf("decode extracted job: %w", err)
	}
	return e.creationRequest(sourceURL), nil
}

// applyUpdate overlays the set fields of upd on req.
func applyUpdate(req *dtos.JobCreationRequest, upd *dtos.JobUpdateRequest) {
	for dst, src := range map[*string]*string{
		&req.EmployerName:   upd.EmployerName,
		&req.Title:          upd.Title,
		&req.WorkType:       upd.WorkType,
		&req.JobType:        upd.JobType,
		&req.SalaryCurrency: upd.SalaryCurrency,
		&req.City:           upd.City,
		&req.State:          upd.State,
		&req.Country:        upd.Country,
		&req.URL:            upd.URL,
		&req.Description:    upd.Description,
	} {
		if src != nil {
			*dst = *src
		}
	}
	if upd.MinSalary != nil {
		req.MinSalary = upd.MinSalary
	}
	if upd.MaxSalary != nil {
		req.MaxSalary = upd.MaxSalary
	}
	if upd.DatePosted != nil {
		req.DatePosted = upd.DatePosted
	}
}

func (a *app) editJobCmd() *cobra.Command {
	var f jobFlags
	cmd := &cobra.Command{
		Use:   "edit <jobId>",
		Short: "Change the fields of a job you track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.updateRequest(cmd)
			if err != nil {
				return err
			}
			job, err := a.api.UpdateJob(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			renderJob(cmd.OutOrStdout(), client.AdaptJob(job))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) trackJobCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "track <jobId>",
		Short: "Start tracking a job from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := models.StatusNew
			if status != "" {
				var err error
				if st, err = models.ParseStatus(status); err != nil {
					return err
				}
			}
			job, err := a.api.TrackJob(cmd.Context(), args[0], st)
			if err != nil {
				return err
			}
			j := client.AdaptJob(job)
			fmt.Fprintf(cmd.OutOrStdout(), "Tracking %s at %s (%s)\n", j.Title, j.EmployerName, j.UserJobID)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "initial status (default New)")
	return cmd
}

func (a *app) setStatusCmd() *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "set-status <trackingId> <status>",
		Short: "Move a tracked job to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}
			var n *string
			if cmd.Flags().Changed("notes") {
				n = &notes
			}
			job, err := a.api.UpdateStatus(cmd.Context(), args[0], status, n)
			if err != nil {
				return err
			}
			j := client.AdaptJob(job)
			fmt.Fprintf(cmd.OutOrStdout(), "%s at %s is now %s\n", j.Title, j.EmployerName, j.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "notes for this application")
	return cmd
}

func (a *app) untrackJobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untrack <trackingId>",
		Short: "Stop tracking a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Untrack(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Job untracked")
			return nil
		},
	}
}

func (a *app) exportJobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Write every tracked job to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var all []dtos.JobResponse
			q := dtos.ListQuery{Page: 1, PageSize: dtos.MaxPageSize}
			for {
				res, err := a.api.ListJobs(cmd.Context(), client.EndpointMyJobs, q)
				if err != nil {
					return err
				}
				all = append(all, res.Items...)
				if len(res.Items) == 0 || int64(len(all)) >= res.TotalCount {
					break
				}
				q.Page++
			}

			if err := exporter.NewCSVExporter(args[0]).ExportJobs(client.AdaptJobs(all)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d jobs to %s\n", len(all), args[0])
			return nil
		},
	}
}
