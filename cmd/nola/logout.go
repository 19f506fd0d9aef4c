package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !sess.Current().IsLogin {
			fmt.Println("Not logged in")
			return nil
		}
		if err := api.Logout(); err != nil {
			return fmt.Errorf("logging out: %w", err)
		}
		fmt.Println("Logged out")
		return nil
	},
}
