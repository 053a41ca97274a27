package minty

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kerbaras/minty/pkg/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptPassword reads a password without echo when stdin is a terminal and
// a plain line otherwise, so it can be piped in.
func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Minty Comics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		password, err := promptPassword(cmd)
		cobra.CheckErr(err)

		controller := openController(cmd)
		defer controller.Close()

		sess := controller.Session()
		if err := sess.Login(cmd.Context(), email, password); err != nil {
			cobra.CheckErr(err)
		}
		waitIdentity(cmd, sess)
		printIdentity(cmd, sess)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a Minty Comics account",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, err := promptPassword(cmd)
		cobra.CheckErr(err)

		controller := openController(cmd)
		defer controller.Close()

		sess := controller.Session()
		if err := sess.Register(cmd.Context(), name, email, password); err != nil {
			cobra.CheckErr(err)
		}
		waitIdentity(cmd, sess)
		printIdentity(cmd, sess)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		controller := openController(cmd)
		defer controller.Close()

		cobra.CheckErr(controller.Session().Logout(cmd.Context()))
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in user",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		controller := openController(cmd)
		defer controller.Close()

		sess := controller.Session()
		waitIdentity(cmd, sess)
		printIdentity(cmd, sess)
	},
}

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List your bookmarked comics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		controller := openController(cmd)
		defer controller.Close()

		token := controller.Session().Token()
		if token == "" {
			cobra.CheckErr(errors.New("please sign in first: minty login --email <email>"))
		}

		comics, err := controller.Source().Bookmarks(cmd.Context(), token)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to load bookmarks: %w", err))
		}
		printComics(cmd, comics, "No bookmarks yet.")
	},
}

// waitIdentity waits for the identity request, giving up when the command is
// interrupted.
func waitIdentity(cmd *cobra.Command, sess *session.Store) {
	stop := context.AfterFunc(cmd.Context(), sess.Close)
	defer stop()
	sess.Wait()
}

func printIdentity(cmd *cobra.Command, sess *session.Store) {
	out := cmd.OutOrStdout()
	switch user := sess.User(); {
	case user != nil:
		fmt.Fprintf(out, "%s <%s>\n", titleStyle.Render(user.Name), user.Email)
	case sess.Authenticated():
		fmt.Fprintf(out, "Signed in, but the session could not be verified: %v\n", sess.IdentityErr())
	default:
		fmt.Fprintln(out, "Not signed in.")
	}
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "Account email")
	loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringP("name", "n", "", "Display name")
	registerCmd.Flags().StringP("email", "e", "", "Account email")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(bookmarksCmd)
}
