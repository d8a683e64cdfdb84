package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devilmonastery/eventdesk/internal/client"
)

// formatDuration formats a duration in a human-friendly way (e.g., "2 days, 3 hours and 45 minutes")
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 && seconds > 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	switch len(parts) {
	case 0:
		return "0 seconds"
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Manage authentication for the EventDesk CLI`,
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())
	cmd.AddCommand(newAuthTokenCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the EventDesk server",
		Long: `Authenticate with email and password. Tokens are stored per context.

The password is read from --password, then EVENTDESK_PASSWORD, and is
prompted for when neither is set.

Examples:
  eventdesk auth login --email staff@example.com
  eventdesk --log-level debug auth login`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			log := cliCtx.Logger.With("command", "login")

			if password == "" {
				password = os.Getenv("EVENTDESK_PASSWORD")
			}
			if email == "" || password == "" {
				var err error
				email, password, err = promptCredentials(cmd.InOrStdin(), cmd.OutOrStdout(), email)
				if err != nil {
					return err
				}
			}

			log.Info("logging in", "email", email, "server", cliCtx.API.Client.BaseURL())
			resp, err := cliCtx.API.Client.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Logged in as %s (%s)\n", resp.User.Name, resp.User.Email)
			if exp, ok := cliCtx.API.Client.AccessTokenExpiry(); ok {
				fmt.Fprintf(out, "  Access token valid for %s\n", formatDuration(time.Until(exp)))
			}
			if resp.Session.RefreshToken == "" {
				fmt.Fprintln(out, "  No refresh token issued; you will need to log in again when the token expires")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (if not provided, will prompt)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (if not provided, will prompt)")

	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the EventDesk server",
		Long:  `Revoke the refresh token on the server and remove stored credentials`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			if !cliCtx.API.Client.HasSession() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}

			cliCtx.API.Client.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Successfully logged out")
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			out := cmd.OutOrStdout()
			c := cliCtx.API.Client

			if !c.HasSession() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			// Asking the server refreshes an expired access token on the way
			session, err := c.CurrentSession(cmd.Context())
			if err != nil {
				if client.IsUnauthenticated(err) {
					fmt.Fprintln(out, "Not logged in (session expired)")
					return nil
				}
				return fmt.Errorf("failed to check session: %w", err)
			}

			fmt.Fprintf(out, "Context: %s\n", cliCtx.Config.CurrentContext)
			fmt.Fprintf(out, "Server: %s\n", c.BaseURL())
			fmt.Fprintf(out, "Logged in as: %s <%s>\n", session.User.Name, session.User.Email)
			fmt.Fprintf(out, "Role: %s\n", session.User.Role)

			exp, ok := c.AccessTokenExpiry()
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "Token expires: %s\n", exp.Local().Format("2006-01-02 15:04:05 MST"))
			if now := time.Now(); now.After(exp) {
				fmt.Fprintf(out, "⚠  Token expired %s ago - automatic refresh will be attempted on next request\n", formatDuration(now.Sub(exp)))
			} else {
				fmt.Fprintf(out, "✓  Valid for %s\n", formatDuration(exp.Sub(now)))
			}
			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Display the current access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := getCliContext(cmd).API.Client.Tokens()
			if tokens.AccessToken == "" {
				return fmt.Errorf("not logged in")
			}

			fmt.Fprintln(cmd.OutOrStdout(), tokens.AccessToken)
			return nil
		},
	}
}

// promptCredentials asks for whatever of email and password is missing.
// The password is read without echo when in is a terminal.
func promptCredentials(in io.Reader, out io.Writer, email string) (string, string, error) {
	reader := bufio.NewReader(in)

	if email == "" {
		fmt.Fprint(out, "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	fmt.Fprint(out, "Password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		passwordBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out) // newline after password input
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		return email, string(passwordBytes), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	slog.Debug("read password from non-terminal input", slog.String("component", "cli"))
	return email, strings.TrimRight(line, "\r\n"), nil
}
