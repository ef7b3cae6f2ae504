package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	perrors "github.com/jrsteele09/admissions-portal/internal/errors"
	"github.com/jrsteele09/admissions-portal/navigation"
	"github.com/jrsteele09/admissions-portal/session"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	email         string
	passwordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the portal",
	Long: `Signs in with email and password and stores the access token in
~/.admissions/credentials.json. The password is prompted for unless
--password-stdin is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if email == "" {
			return errors.New("--email is required")
		}
		password, err := readPassword()
		if err != nil {
			return err
		}

		provider, _, _, err := newProvider()
		if err != nil {
			return err
		}

		snap, err := provider.SignIn(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		pterm.Success.Printf("Вы вошли как %s (%s)\n", snap.Session.Email, navigation.Label(snap.Session.Role))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _, _, err := newProvider()
		if err != nil {
			return err
		}
		provider.SignOut()
		fmt.Println("Logged out successfully")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Validate the stored token and show the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _, store, err := newProvider()
		if err != nil {
			return err
		}
		creds, loadErr := store.Load()

		snap, err := provider.Hydrate(cmd.Context())
		if err != nil {
			return err
		}
		if snap.State != session.StateAuthenticated {
			if loadErr != nil && !perrors.Is(loadErr, perrors.ErrNoToken) {
				return loadErr
			}
			return errors.New("not logged in")
		}

		pterm.DefaultSection.Println("Session")
		pterm.Info.Printf("Email: %s\n", snap.Session.Email)
		pterm.Info.Printf("Role: %s\n", navigation.Label(snap.Session.Role))
		if loadErr == nil && !creds.ExpiresAt.IsZero() {
			pterm.Info.Printf("Token expires at: %s\n", creds.ExpiresAt.Format(time.RFC1123))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
}

func readPassword() (string, error) {
	if passwordStdin || !term.IsTerminal(int(os.Stdin.Fd())) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Print("Пароль: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
