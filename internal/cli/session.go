package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mmcdole/reel/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (a *app) loginCmd() *cobra.Command {
	var (
		username string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the server and store the session",
		Long: `Authenticate with username and password. Missing credentials are
prompted for. The session token is stored per server; use --save to also
write the credentials to the config file so expired tokens renew silently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username != "" {
				a.cfg.Server.Username = username
			}
			if a.cfg.Server.Username == "" {
				name, err := readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Username: ")
				if err != nil {
					return err
				}
				a.cfg.Server.Username = name
			}
			if a.cfg.Server.Password == "" {
				pw, err := a.readPassword("Password: ")
				if err != nil {
					return err
				}
				a.cfg.Server.Password = pw
			}

			client, err := a.connect()
			if err != nil {
				return err
			}
			sess, err := client.Auth().Login(cmd.Context())
			if err != nil {
				return err
			}

			if save {
				if err := config.Save(a.cfg, a.cfgFile); err != nil {
					return err
				}
			}
			return a.printer(cmd).success(map[string]string{"userId": sess.UserID},
				fmt.Sprintf("logged in to %s as %s", client.BaseURL(), a.cfg.Server.Username))
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "override server.username")
	cmd.Flags().BoolVar(&save, "save", false, "write the credentials to the config file")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			if err := client.Auth().Logout(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			return a.printer(cmd).success(map[string]bool{"loggedOut": true}, "session cleared")
		},
	}
}

func readLine(in io.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password from the terminal without echo
func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password configured and stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, label)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}
