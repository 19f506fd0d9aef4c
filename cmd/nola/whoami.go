package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current admin session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := sess.Current()
		if !current.IsLogin {
			return fmt.Errorf("not logged in (run 'nola login')")
		}

		user := current.User
		if remote, _ := cmd.Flags().GetBool("remote"); remote {
			fetched, err := api.GetUserInfo(context.Background())
			if err != nil {
				return fmt.Errorf("fetching user info: %w", err)
			}
			// The server omits the token from the profile endpoint;
			// keep the one we hold.
			fetched.Token = current.Token
			user = fetched
		}

		if jsonOutput {
			printUserJSON(user)
		} else {
			printUserTable(user)
		}
		return nil
	},
}

func init() {
	whoamiCmd.Flags().Bool("remote", false, "fetch fresh profile data from the server")
}
