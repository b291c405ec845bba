package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var stockReason string

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage credit packs",
}

var productsStockCmd = &cobra.Command{
	Use:   "stock <id> <delta>",
	Short: "Add (positive) or remove (negative) stock",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("delta must be an integer: %w", err)
		}
		p, err := app.Services.Products.AdjustStock(cmd.Context(), args[0], delta, stockReason)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout(), "%s now has %d in stock.\n", p.Name, p.Stock)
		return nil
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "Manage games",
}

var gamesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List games",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := app.Services.Games.GetPaginated(cmd.Context(), listParams)
		if err != nil {
			return err
		}
		w := newTable(stdout(), "ID\tNAME\tSLUG\tCATEGORY\tACTIVE")
		for _, g := range page.Data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", g.ID, g.Name, g.Slug, g.Category, g.Active)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		printPagination(stdout(), page.Pagination)
		return nil
	},
}

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Support inbox",
}

var messagesUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Print the number of unread messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := app.Services.Messages.UnreadCount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout(), n)
		return nil
	},
}

func init() {
	productsStockCmd.Flags().StringVar(&stockReason, "reason", "", "reason recorded with the adjustment")
	productsCmd.AddCommand(productsStockCmd)

	addListFlags(gamesListCmd)
	gamesCmd.AddCommand(gamesListCmd)

	messagesCmd.AddCommand(messagesUnreadCmd)
	rootCmd.AddCommand(productsCmd, gamesCmd, messagesCmd)
}
