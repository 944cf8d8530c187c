package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	huh "charm.land/huh/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/auth"
	"github.com/zhubert/parley/internal/config"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a bearer token for the conversation service",
	Long: `Stores the bearer token sent with every request in ~/.parley/token.
The token is read from --token, or prompted for when the flag is absent.
` + config.EnvToken + ` still overrides the stored token at runtime.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored bearer token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return logout(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	token := tokenFlag
	if token == "" {
		var err error
		if token, err = promptToken(); err != nil {
			return err
		}
	}
	return login(cmd.OutOrStdout(), token, time.Now())
}

// promptToken asks for the token without echoing it.
func promptToken() (string, error) {
	var token string
	input := huh.NewInput().
		Title("Bearer token").
		Description("Paste the token issued by the conversation service").
		EchoMode(huh.EchoModePassword).
		Value(&token).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("token is required")
			}
			return nil
		})
	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", err
	}
	return token, nil
}

// login saves token and describes it on w.
func login(w io.Writer, token string, now time.Time) error {
	if err := config.SaveToken(token); err != nil {
		return err
	}

	info, ok := auth.Inspect(strings.TrimSpace(token))
	switch {
	case !ok:
		fmt.Fprintln(w, "Token saved.")
	case info.ExpiresAt.IsZero():
		fmt.Fprintf(w, "Logged in as %s.\n", labelOr(info.Label(), "unknown user"))
	case info.Expired(now):
		fmt.Fprintf(w, "Logged in as %s, but the token expired %s.\n", labelOr(info.Label(), "unknown user"), humanize.RelTime(info.ExpiresAt, now, "ago", "from now"))
	default:
		fmt.Fprintf(w, "Logged in as %s. Token expires %s.\n", labelOr(info.Label(), "unknown user"), humanize.RelTime(info.ExpiresAt, now, "ago", "from now"))
	}
	return nil
}

func logout(w io.Writer) error {
	removed, err := config.ClearToken()
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintln(w, "Token removed.")
	} else {
		fmt.Fprintln(w, "No stored token.")
	}
	return nil
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
