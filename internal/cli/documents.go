package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/spf13/cobra"
)

type docFlags struct {
	title     string
	content   string
	file      string
	isDefault bool
	jobID     string
}

func (f *docFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "document title")
	cmd.Flags().StringVar(&f.content, "content", "", "document text")
	cmd.Flags().StringVar(&f.file, "file", "", "read the document text from a file")
}

func (f *docFlags) text() (string, error) {
	if f.file == "" {
		return f.content, nil
	}
	b, err := os.ReadFile(f.file)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(b), nil
}

func (a *app) docsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "docs",
		Short:       "Manage resumes and cover letters",
		Annotations: authOnly(),
	}
	cmd.AddCommand(a.resumesCmd(), a.coverLettersCmd())
	return cmd
}

func (a *app) resumesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "resumes", Short: "Manage resumes"}

	list := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.api.ListResumes(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Title", "Default", "Updated"})
			for _, r := range items {
				def := ""
				if r.IsDefault {
					def = "yes"
				}
				t.AppendRow(table.Row{r.ID, r.Title, def, date(&r.UpdatedAt)})
			}
			t.Render()
			return nil
		},
	}

	show := &cobra.Command{
		Use:  "show <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.api.GetResume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDocument(cmd.OutOrStdout(), r.Title, r.Content)
			return nil
		},
	}

	var cf docFlags
	create := &cobra.Command{
		Use:  "create",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := cf.text()
			if err != nil {
				return err
			}
			r, err := a.api.CreateResume(cmd.Context(), &dtos.ResumeRequest{Title: cf.title, Content: content, IsDefault: cf.isDefault})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resume %s created\n", r.ID)
			return nil
		},
	}
	cf.bind(create)
	create.Flags().BoolVar(&cf.isDefault, "default", false, "make this the default resume")

	var uf docFlags
	update := &cobra.Command{
		Use:  "update <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.api.GetResume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := &dtos.ResumeRequest{Title: current.Title, Content: current.Content, IsDefault: current.IsDefault}
			if cmd.Flags().Changed("title") {
				req.Title = uf.title
			}
			if cmd.Flags().Changed("content") || cmd.Flags().Changed("file") {
				if req.Content, err = uf.text(); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("default") {
				req.IsDefault = uf.isDefault
			}
			if _, err := a.api.UpdateResume(cmd.Context(), args[0], req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Resume updated")
			return nil
		},
	}
	uf.bind(update)
	update.Flags().BoolVar(&uf.isDefault, "default", false, "make this the default resume")

	del := &cobra.Command{
		Use:  "delete <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.DeleteResume(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Resume deleted")
			return nil
		},
	}

	cmd.AddCommand(list, show, create, update, del)
	return cmd
}

func (a *app) coverLettersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cover-letters", Short: "Manage cover letters"}

	list := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.api.ListCoverLetters(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Title", "Job", "Updated"})
			for _, c := range items {
				t.AppendRow(table.Row{c.ID, c.Title, letterJob(c), date(&c.UpdatedAt)})
			}
			t.Render()
			return nil
		},
	}

	show := &cobra.Command{
		Use:  "show <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api.GetCoverLetter(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDocument(cmd.OutOrStdout(), c.Title, c.Content)
			return nil
		},
	}

	var cf docFlags
	create := &cobra.Command{
		Use:  "create",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := cf.text()
			if err != nil {
				return err
			}
			req := &dtos.CoverLetterRequest{Title: cf.title, Content: content}
			if cf.jobID != "" {
				req.JobID = &cf.jobID
			}
			c, err := a.api.CreateCoverLetter(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cover letter %s created\n", c.ID)
			return nil
		},
	}
	cf.bind(create)
	create.Flags().StringVar(&cf.jobID, "job", "", "job the letter is for")

	var uf docFlags
	update := &cobra.Command{
		Use:  "update <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.api.GetCoverLetter(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := &dtos.CoverLetterRequest{Title: current.Title, Content: current.Content}
			if current.JobID != nil {
				id := current.JobID.String()
				req.JobID = &id
			}
			if cmd.Flags().Changed("title") {
				req.Title = uf.title
			}
			if cmd.Flags().Changed("content") || cmd.Flags().Changed("file") {
				if req.Content, err = uf.text(); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("job") {
				req.JobID = nil
				if uf.jobID != "" {
					req.JobID = &uf.jobID
				}
			}
			if _, err := a.api.UpdateCoverLetter(cmd.Context(), args[0], req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cover letter updated")
			return nil
		},
	}
	uf.bind(update)
	update.Flags().StringVar(&uf.jobID, "job", "", "job the letter is for, empty to unlink")

	del := &cobra.Command{
		Use:  "delete <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.DeleteCoverLetter(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cover letter deleted")
			return nil
		},
	}

	cmd.AddCommand(list, show, create, update, del)
	return cmd
}

func letterJob(c models.CoverLetter) string {
	if c.JobID == nil {
		return "-"
	}
	return c.JobID.String()
}

func printDocument(w io.Writer, title, content string) {
	fmt.Fprintf(w, "%s\n\n%s\n", title, content)
}
