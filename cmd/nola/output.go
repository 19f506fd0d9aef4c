package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/luodachuixg/nola-console/internal/model"
	"github.com/luodachuixg/nola-console/internal/presence"
	"github.com/luodachuixg/nola-console/internal/ui"
)

func printUserJSON(user *model.User) {
	// Never print the bearer token.
	redacted := *user
	redacted.Token = ""
	data, err := json.MarshalIndent(&redacted, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printUserTable(user *model.User) {
	fmt.Printf("Username:     %s\n", user.Username)
	fmt.Printf("Display name: %s\n", user.DisplayName)
	fmt.Printf("Email:        %s\n", user.Email)
	if user.Description != "" {
		fmt.Printf("Description:  %s\n", user.Description)
	}
	if user.CreateDate > 0 {
		fmt.Printf("Created:      %s\n", formatMillis(user.CreateDate))
	}
	if user.LastLoginDate > 0 {
		fmt.Printf("Last login:   %s\n", formatMillis(user.LastLoginDate))
	}
}

func printOnline(st presence.State) {
	if jsonOutput {
		out := map[string]int64{"count": st.LastCount, "timestamp": st.LastUpdateMs}
		data, err := json.Marshal(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	if st.LastCount == presence.Unknown {
		fmt.Printf("online: %s\n", ui.Muted.Sprint("unknown"))
		return
	}
	fmt.Printf("online: %s  %s\n",
		ui.Accent.Sprintf("%d", st.LastCount),
		ui.Muted.Sprintf("(updated %s)", formatMillis(st.LastUpdateMs)))
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}
