package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vietddude/topup/internal/infra/tokenstore"
)

var (
	loginUser string
	loginPass string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session tokens",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the session and clear stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Services.Auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(stdout(), "Logged out.")
		return nil
	},
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Session commands",
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in and when the access token expires",
	RunE:  runAuthStatus,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", os.Getenv("TOPUP_USERNAME"), "admin username")
	loginCmd.Flags().StringVar(&loginPass, "password", os.Getenv("TOPUP_PASSWORD"), "admin password (prompted when empty)")
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, authCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	user := loginUser
	if user == "" {
		fmt.Fprint(os.Stderr, "Username: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		user = strings.TrimSpace(line)
	}

	pass := loginPass
	if pass == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		pass = string(raw)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	me, err := app.Services.Auth.Login(ctx, user, pass)
	if err != nil {
		return err
	}
	name := me.Username
	if name == "" {
		name = user
	}
	fmt.Fprintf(stdout(), "Logged in as %s.\n", name)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	claims, err := tokenstore.Inspect(cmd.Context(), app.Tokens)
	if errors.Is(err, tokenstore.ErrNotLoggedIn) {
		fmt.Fprintln(stdout(), "Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}

	w := newTable(stdout(), "SUBJECT\tISSUED\tEXPIRES\tSTATE")
	state := paint("healthy")
	if claims.Expired(time.Now()) {
		state = paint("critical") + " (expired, next request refreshes)"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		claims.Subject,
		formatTime(claims.IssuedAt),
		formatTime(claims.ExpiresAt),
		state,
	)
	return w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}
