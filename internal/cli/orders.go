package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/api"
)

var (
	orderStatusFilter string
	orderNote         string
	exportFormat      string
	exportOut         string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Manage top-up orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := listParams
		if orderStatusFilter != "" {
			params.Filters = map[string]string{"status": orderStatusFilter}
		}
		page, err := app.Services.Orders.GetPaginated(cmd.Context(), params)
		if err != nil {
			return err
		}
		w := newTable(stdout(), "ID\tNUMBER\tUSER\tAMOUNT\tSTATUS\tCREATED")
		for _, o := range page.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\t%s\n",
				o.ID, o.OrderNumber, o.UserID, o.Amount.StringFixed(2), o.Currency,
				paint(string(o.Status)), formatTime(o.CreatedAt))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		printPagination(stdout(), page.Pagination)
		return nil
	},
}

var ordersStatusCmd = &cobra.Command{
	Use:   "status <status> <id>...",
	Short: "Set the status of one or more orders",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := domain.OrderStatus(args[0])
		ids := args[1:]

		res, err := app.UpdateOrderStatuses(cmd.Context(), ids, status, orderNote)
		if err != nil {
			return err
		}

		w := newTable(stdout(), "ID\tRESULT")
		for _, o := range res.Successes {
			fmt.Fprintf(w, "%s\t%s\n", o.ID, paint(string(o.Status)))
		}
		for _, f := range res.Failures {
			fmt.Fprintf(w, "%s\t%s\n", ids[f.Index], paint("critical")+" "+f.Err.Error())
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if len(res.Failures) > 0 {
			return fmt.Errorf("%d of %d orders failed", len(res.Failures), len(ids))
		}
		return nil
	},
}

var ordersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download orders as csv, xlsx or json",
	RunE: func(cmd *cobra.Command, args []string) error {
		var params api.ListParams
		if orderStatusFilter != "" {
			params.Filters = map[string]string{"status": orderStatusFilter}
		}
		data, err := app.Services.Orders.Export(cmd.Context(), exportFormat, params)
		if err != nil {
			return err
		}
		if exportOut == "" || exportOut == "-" {
			_, err = stdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", len(data), exportOut)
		return nil
	},
}

func init() {
	addListFlags(ordersListCmd)
	ordersListCmd.Flags().StringVar(&orderStatusFilter, "status", "", "filter by status")
	ordersStatusCmd.Flags().StringVar(&orderNote, "note", "", "note stored with the change")
	ordersExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv, xlsx or json")
	ordersExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (stdout when empty)")
	ordersExportCmd.Flags().StringVar(&orderStatusFilter, "status", "", "filter by status")

	ordersCmd.AddCommand(ordersListCmd, ordersStatusCmd, ordersExportCmd)
	rootCmd.AddCommand(ordersCmd)
}
