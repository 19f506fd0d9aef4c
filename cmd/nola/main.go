package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luodachuixg/nola-console/internal/config"
	"github.com/luodachuixg/nola-console/internal/gateway"
	"github.com/luodachuixg/nola-console/internal/notice"
	"github.com/luodachuixg/nola-console/internal/securestore"
	"github.com/luodachuixg/nola-console/internal/session"
	"github.com/luodachuixg/nola-console/internal/ui"
)

var (
	baseURL    string
	jsonOutput bool
	noColor    bool

	cfg  *config.Config
	sess *session.Store
	api  *gateway.Client
)

var rootCmd = &cobra.Command{
	Use:   "nola <command>",
	Short: "Terminal admin console for the Nola content platform",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.Configure(noColor)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}

		kv, err := securestore.NewFileStore(cfg.StateDir, cfg.StoreSecret)
		if err != nil {
			return fmt.Errorf("opening state store: %w", err)
		}
		sess = session.New(kv, session.DefaultKey)

		api = gateway.New(cfg.BaseURL, sess, gateway.Options{
			Notifier:   &notice.TermNotifier{},
			Navigator:  consoleNavigator{},
			Gate:       notice.NewGate(0),
			LoginRoute: cfg.LoginRoute,
		})
		return nil
	},
}

// consoleNavigator is the terminal's stand-in for the browser redirect
// to the login route: there is no page to swap, so it points the user
// at the login command instead.
type consoleNavigator struct{}

func (consoleNavigator) NavigateTo(path string, replace bool) error {
	ui.Muted.Fprintln(os.Stderr, "run 'nola login' to sign in again")
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Nola API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(passwdCmd)
	rootCmd.AddCommand(onlineCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
