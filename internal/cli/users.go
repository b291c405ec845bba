package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietddude/topup/internal/infra/api"
)

var listParams api.ListParams

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage storefront users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := app.Services.Users.GetPaginated(cmd.Context(), listParams)
		if err != nil {
			return err
		}
		w := newTable(stdout(), "ID\tUSERNAME\tEMAIL\tROLE\tSTATUS")
		for _, u := range page.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role, paint(string(u.Status)))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		printPagination(stdout(), page.Pagination)
		return nil
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := app.Services.Users.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		w := newTable(stdout(), "FIELD\tVALUE")
		fmt.Fprintf(w, "id\t%s\n", u.ID)
		fmt.Fprintf(w, "username\t%s\n", u.Username)
		fmt.Fprintf(w, "email\t%s\n", u.Email)
		fmt.Fprintf(w, "name\t%s\n", u.FullName)
		fmt.Fprintf(w, "role\t%s\n", u.Role)
		fmt.Fprintf(w, "status\t%s\n", paint(string(u.Status)))
		fmt.Fprintf(w, "created\t%s\n", formatTime(u.CreatedAt))
		if u.LastLoginAt != nil {
			fmt.Fprintf(w, "last login\t%s\n", formatTime(*u.LastLoginAt))
		}
		return w.Flush()
	},
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&listParams.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&listParams.Limit, "limit", 20, "page size")
	cmd.Flags().StringVar(&listParams.Search, "search", "", "search text")
	cmd.Flags().StringVar(&listParams.SortBy, "sort-by", "", "sort field")
	cmd.Flags().StringVar(&listParams.SortOrder, "sort-order", "", "asc or desc")
}

func init() {
	addListFlags(usersListCmd)
	usersCmd.AddCommand(usersListCmd, usersGetCmd)
	rootCmd.AddCommand(usersCmd)
}
