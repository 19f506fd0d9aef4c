package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the admin password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !sess.Current().IsLogin {
			return fmt.Errorf("not logged in (run 'nola login')")
		}

		password, err := readPassword("New password: ")
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
		if password == "" {
			return fmt.Errorf("password must not be empty")
		}

		if err := api.UpdateUserPassword(context.Background(), password); err != nil {
			return fmt.Errorf("updating password: %w", err)
		}

		// The old token is dead server-side; drop it locally too.
		if err := sess.SetUser(nil); err != nil {
			return err
		}
		fmt.Println("Password updated; log in again with the new password")
		return nil
	},
}
