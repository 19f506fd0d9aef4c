package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/luodachuixg/nola-console/internal/presence"
)

var onlineCmd = &cobra.Command{
	Use:   "online",
	Short: "Watch the blog's live viewer count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")

		if !sess.Current().IsLogin {
			return fmt.Errorf("not logged in (run 'nola login')")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		updates := make(chan presence.State, 8)
		client := presence.New(cfg.BaseURL, presence.Options{
			// No request timeout: the stream is long-lived.
			HTTPClient: &http.Client{},
			OnUpdate: func(st presence.State) {
				select {
				case updates <- st:
				default:
				}
			},
		})
		defer client.Close()

		if !client.Snapshot().StreamSupported {
			return fmt.Errorf("streaming is not supported for %s; live count unavailable", cfg.BaseURL)
		}

		unbind := client.Bind(sess)
		defer unbind()

		for {
			select {
			case <-ctx.Done():
				return nil
			case st := <-updates:
				printOnline(st)
				if once {
					return nil
				}
				if st.LastCount == presence.Unknown && !sess.Current().IsLogin {
					// Session expired mid-watch; the stream is gone for good.
					return fmt.Errorf("session ended")
				}
			}
		}
	},
}

func init() {
	onlineCmd.Flags().Bool("once", false, "exit after the first count update")
}
