package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmaekawa/nippo/internal/api"
	"github.com/tmaekawa/nippo/internal/models"
)

type ReportsCmd struct {
	List   ListReportsCmd  `cmd:"" default:"1" help:"List reports"`
	Show   ShowReportCmd   `cmd:"" help:"Show a report"`
	New    NewReportCmd    `cmd:"" help:"Write a new report"`
	Edit   EditReportCmd   `cmd:"" help:"Edit a report"`
	Delete DeleteReportCmd `cmd:"" help:"Delete a report"`
}

type ListReportsCmd struct {
	Server string `help:"Server URL." default:""`
	Author string `help:"Filter by author username." default:""`
	Limit  int    `help:"Maximum number of reports." default:"20"`
}

func (l *ListReportsCmd) Run(ctx context.Context, globals *Globals) error {
	manager, err := requireSession()
	if err != nil {
		return err
	}

	client, err := apiClient(l.Server, manager.Token())
	if err != nil {
		return err
	}

	reports, err := client.ListReports(ctx, l.Author, l.Limit)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	printReports(reports, l.Author)
	return nil
}

func printReports(reports []*models.Report, author string) {
	authorFilter := author
	if authorFilter == "" {
		authorFilter = "all"
	}
	fmt.Printf("Reports (author: %s):\n", authorFilter)

	if len(reports) == 0 {
		fmt.Println("No reports found.")
		return
	}

	fmt.Printf("%-36s %-12s %-15s %-40s\n", "Report ID", "Date", "Author", "Title")
	fmt.Println(strings.Repeat("─", 106))

	for _, report := range reports {
		title := report.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}

		fmt.Printf("%-36s %-12s %-15s %-40s\n",
			report.ID,
			formatDate(report.Date),
			report.UserName,
			title)
	}

	fmt.Printf("\nTotal reports: %d\n", len(reports))
}

type ShowReportCmd struct {
	Server string `help:"Server URL." default:""`
	ID     string `arg:"" help:"Report ID."`
}

func (s *ShowReportCmd) Run(ctx context.Context, globals *Globals) error {
	manager, err := requireSession()
	if err != nil {
		return err
	}

	client, err := apiClient(s.Server, manager.Token())
	if err != nil {
		return err
	}

	report, err := client.GetReport(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	fmt.Printf("Title:   %s\n", report.Title)
	fmt.Printf("Author:  %s\n", report.UserName)
	fmt.Printf("Date:    %s\n", formatDate(report.Date))
	fmt.Printf("Updated: %s\n", report.UpdatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Println()
	fmt.Println(report.Content)
	return nil
}

type NewReportCmd struct {
	Server  string `help:"Server URL." default:""`
	Title   string `help:"Report title." required:""`
	Content string `help:"Report body." required:""`
	Date    string `help:"Report date (YYYY-MM-DD), today when omitted." default:""`
}

func (n *NewReportCmd) Run(ctx context.Context, globals *Globals) error {
	manager, err := requireSession()
	if err != nil {
		return err
	}

	date, err := parseDate(n.Date)
	if err != nil {
		return err
	}

	client, err := apiClient(n.Server, manager.Token())
	if err != nil {
		return err
	}

	report, err := client.CreateReport(ctx, api.ReportDraft{
		Title:   n.Title,
		Content: n.Content,
		Date:    date,
	})
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	fmt.Printf("Created report %s (%s)\n", report.ID, formatDate(report.Date))
	return nil
}

type EditReportCmd struct {
	Server  string `help:"Server URL." default:""`
	ID      string `arg:"" help:"Report ID."`
	Title   string `help:"New title." required:""`
	Content string `help:"New body." required:""`
	Date    string `help:"New date (YYYY-MM-DD), today when omitted." default:""`
}

func (e *EditReportCmd) Run(ctx context.Context, globals *Globals) error {
	manager, err := requireSession()
	if err != nil {
		return err
	}

	date, err := parseDate(e.Date)
	if err != nil {
		return err
	}

	client, err := apiClient(e.Server, manager.Token())
	if err != nil {
		return err
	}

	report, err := client.UpdateReport(ctx, e.ID, api.ReportDraft{
		Title:   e.Title,
		Content: e.Content,
		Date:    date,
	})
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}

	fmt.Printf("Updated report %s\n", report.ID)
	return nil
}

type DeleteReportCmd struct {
	Server string `help:"Server URL." default:""`
	ID     string `arg:"" help:"Report ID."`
}

func (d *DeleteReportCmd) Run(ctx context.Context, globals *Globals) error {
	manager, err := requireSession()
	if err != nil {
		return err
	}

	client, err := apiClient(d.Server, manager.Token())
	if err != nil {
		return err
	}

	if err := client.DeleteReport(ctx, d.ID); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	fmt.Printf("Deleted report %s\n", d.ID)
	return nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}
