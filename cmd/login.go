// Copyright (c) 2025 IRMS
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"

	"irms/cli/internal/backend"
	"irms/cli/internal/httperrors"
	"irms/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	loginUsername      string
	loginPasswordStdin bool
	loginRedirect      string
)

// errInvalidCredentials is returned when the service rejects the username or password.
var errInvalidCredentials = errors.New("invalid username or password")

// loginCmd exchanges a username and password for a session token.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the recipe service",
	Long: `The login command exchanges your username and password for an access token,
stores the token in the configured storage backend and loads your profile.

The password is read without echo from the terminal, or from standard input
with --password-stdin. With --redirect the CLI then opens the page that sent
you to the login route, as printed by 'irms open'.

If already logged in with a valid session, the sign-in is skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if a.sess.IsLoggedIn() && a.svc.FetchUser(ctx) {
			fmt.Printf("Already logged in as %s\n", a.sess.User().Name())
			return navigateAfterLogin(a, loginRedirect)
		}

		in := bufio.NewReader(os.Stdin)
		username, password, err := readCredentials(in, loginUsername, loginPasswordStdin)
		if err != nil {
			return err
		}

		stop := startSpinner("Signing in")
		err = a.svc.Login(ctx, username, password)
		stop()
		if err != nil {
			return presentLoginError(err, a.cfg.BaseURL)
		}

		if !a.sess.IsLoggedIn() {
			pterm.Warning.Println("Signed in, but your profile could not be loaded. Please try again.")
			return errors.New("profile unavailable after sign-in")
		}
		fmt.Println(getRandomLoginGreeting(a.sess.User().Name()))
		return navigateAfterLogin(a, loginRedirect)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from standard input")
	loginCmd.Flags().StringVar(&loginRedirect, "redirect", "", "Path to open after signing in")
}

// readCredentials completes username and password from in, prompting on a
// terminal. With fromStdin the password is the next line of in.
func readCredentials(in *bufio.Reader, username string, fromStdin bool) (string, string, error) {
	interactive := !fromStdin && terminal.IsInteractive()

	if username == "" {
		if fromStdin {
			return "", "", errors.New("--username is required with --password-stdin")
		}
		prompt := "Username: "
		fmt.Print(prompt)
		u, err := terminal.ReadLine(in)
		if err != nil {
			return "", "", fmt.Errorf("read username: %w", err)
		}
		if interactive {
			terminal.ClearPreviousLines(len(prompt) + len(u))
		}
		username = u
	}
	if username == "" {
		return "", "", errors.New("username is required")
	}

	var (
		password string
		err      error
	)
	if interactive {
		password, err = terminal.ReadSecret("Password: ")
	} else {
		password, err = terminal.ReadLine(in)
	}
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	if password == "" {
		return "", "", errors.New("password is required")
	}
	return username, password, nil
}

// presentLoginError prints a message for a failed Login and returns the
// error the command exits with.
func presentLoginError(err error, baseURL string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if loginRejected(err) {
		pterm.Error.Println("Invalid username or password.")
		return errInvalidCredentials
	}
	return httperrors.FormatNetworkError(err, "signing in", httperrors.ExtractHostFromURL(baseURL))
}

// loginRejected reports whether the service refused the credentials.
func loginRejected(err error) bool {
	var se *backend.StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusBadRequest || se.Unauthorized()
}

// navigateAfterLogin opens redirect, if any, now that the session is logged in.
func navigateAfterLogin(a *app, redirect string) error {
	if redirect == "" {
		return nil
	}
	loc, err := a.router.Push(redirect)
	if err != nil {
		return err
	}
	fmt.Printf("→ %s\n", loc.FullPath())
	return nil
}

// getRandomLoginGreeting returns a random greeting phrase with the user's identifier
func getRandomLoginGreeting(identifier string) string {
	greetings := []string{
		"🎉 Welcome back, %s!",
		"✨ Great to see you, %s!",
		"🚀 You're all set, %s!",
		"👋 Hello %s! What's cooking?",
		"💫 Successfully authenticated as %s",
		"🌟 Welcome aboard, %s!",
		"✅ Authentication complete! Hi %s!",
		"🔓 Access granted! Welcome %s!",
	}
	return fmt.Sprintf(greetings[rand.Intn(len(greetings))], identifier)
}
