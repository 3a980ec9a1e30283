package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"retailshop/internal/config"
	"retailshop/internal/database"
	"retailshop/internal/models"
	"retailshop/internal/repository"
	"retailshop/internal/service"
)

var reportDays int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the sales summary for completed orders",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVar(&reportDays, "days", service.DefaultReportDays, "Number of days of daily history")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.ConnectDB(cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	summary, err := service.NewReportService(repository.NewReportRepository(pool)).Sales(cmd.Context(), reportDays)
	if err != nil {
		return err
	}

	return printSummary(cmd.OutOrStdout(), summary)
}

func printSummary(out io.Writer, s *models.SalesSummary) error {
	fmt.Fprintf(out, "Total: %d orders, revenue %s\n", s.TotalOrders, s.TotalRevenue.StringFixed(2))
	fmt.Fprintf(out, "Last 7 days: %d orders, revenue %s\n", s.Last7Days.Orders, s.Last7Days.Revenue.StringFixed(2))
	fmt.Fprintf(out, "Last 30 days: %d orders, revenue %s\n\n", s.Last30Days.Orders, s.Last30Days.Revenue.StringFixed(2))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tORDERS\tREVENUE\tAVERAGE\t")
	for _, d := range s.Daily {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n",
			d.Date.Format("2006-01-02"), d.Orders, d.Revenue.StringFixed(2), d.AverageOrder.StringFixed(2))
	}
	return tw.Flush()
}
