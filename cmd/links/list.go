package links

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/linkward/internal/config"
	"github.com/jonesrussell/linkward/internal/database"
	"github.com/jonesrussell/linkward/internal/domain"
)

// TableRenderer handles the display of link data in a table format.
type TableRenderer struct{}

// NewTableRenderer creates a new TableRenderer instance.
func NewTableRenderer() *TableRenderer {
	return &TableRenderer{}
}

// RenderTable formats and displays the links in a table format.
func (r *TableRenderer) RenderTable(links []*domain.Link) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"URL", "Status", "Title", "Stars", "Failures", "Last Checked"})

	for _, link := range links {
		t.AppendRow(table.Row{
			link.URL,
			link.Status,
			stringOrDash(link.Title),
			starsOrDash(link),
			link.ConsecutiveFailures,
			lastCheckedOrDash(link),
		})
	}

	t.Render()
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func starsOrDash(link *domain.Link) string {
	if !link.IsGitHubRepo || link.GitHubStars == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *link.GitHubStars)
}

func lastCheckedOrDash(link *domain.Link) string {
	if link.LastChecked == nil {
		return "never"
	}
	return link.LastChecked.Format("2006-01-02 15:04")
}

// newListCommand creates the list subcommand.
func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored links",
		Long:  `List all links tracked by the scheduler with their current status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := database.NewPostgresConnection(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			repo := database.NewLinkRepository(db, cfg.Refresh.Interval, cfg.Refresh.RetryUnavailableRepos)

			links, err := repo.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list links: %w", err)
			}

			if len(links) == 0 {
				fmt.Println("No links stored")
				return nil
			}

			NewTableRenderer().RenderTable(links)
			return nil
		},
	}
}
