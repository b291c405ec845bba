package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/health"
)

func newTable(w io.Writer, header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, header)
	return tw
}

// out is replaced in tests.
var out io.Writer = os.Stdout

func stdout() io.Writer { return out }

func paint(status string) string {
	switch status {
	case string(health.StatusHealthy), string(domain.OrderStatusCompleted), string(domain.UserStatusActive),
		string(domain.ResellerStatusApproved):
		return color.GreenString(status)
	case string(health.StatusDegraded), string(domain.OrderStatusPending), string(domain.OrderStatusProcessing):
		return color.YellowString(status)
	case string(health.StatusCritical), string(domain.OrderStatusFailed), string(domain.UserStatusSuspended):
		return color.RedString(status)
	}
	return status
}

func printPagination(w io.Writer, p domain.Pagination) {
	_, _ = fmt.Fprintf(w, "\npage %d/%d (%d total)\n", p.Page, p.TotalPages, p.Total)
}
