package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in to the platform and persist the session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		if len(args) > 0 {
			username = args[0]
		}
		if username == "" {
			var err error
			username, err = readLine("Username: ")
			if err != nil {
				return err
			}
		}
		if username == "" {
			return fmt.Errorf("username is required")
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		user, err := api.Login(context.Background(), username, password)
		if err != nil {
			return fmt.Errorf("logging in: %w", err)
		}

		name := user.DisplayName
		if name == "" {
			name = user.Username
		}
		fmt.Printf("Logged in as %s\n", name)
		return nil
	},
}

// readPassword prompts without echo on a terminal, and falls back to a
// plain line read when stdin is piped.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return readLine("")
}

func readLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(os.Stderr, prompt)
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "admin username")
}
