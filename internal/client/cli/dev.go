package cli

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Development commands. They manipulate the runtime environment and the
// cache for manual testing and are reachable only with -dev.

func (a *App) mockDate(args []string) {
	if len(args) == 0 {
		if a.env.MockDateActive() {
			fmt.Println("Simulated date:", a.env.Now().Format(time.DateOnly))
		} else {
			fmt.Println("Usage: mockdate <YYYY-MM-DD|clear>")
		}
		return
	}

	if args[0] == "clear" {
		a.env.ClearMockDate()
		fmt.Println("Simulated date cleared")
		return
	}

	d, err := time.Parse(time.DateOnly, args[0])
	if err != nil {
		fmt.Println("Invalid date, expected YYYY-MM-DD")
		return
	}
	a.env.SetMockDate(d)
	fmt.Println("Simulated date set to", args[0])
}

func (a *App) offline(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: offline <on|off>")
		return
	}
	switch args[0] {
	case "on":
		a.env.SetForceOffline(true)
		fmt.Println("Offline mode on, server communication is simulated to fail")
	case "off":
		a.env.SetForceOffline(false)
		fmt.Println("Offline mode off")
	default:
		fmt.Println("Usage: offline <on|off>")
	}
}

func (a *App) erase(ctx context.Context) {
	confirm, err := getSimpleText(a.reader, "Erase all local data? Type 'yes' to confirm", os.Stdout)
	if err != nil || confirm != "yes" {
		fmt.Println("Aborted")
		return
	}
	if err := a.tracker.EraseAll(ctx); err != nil {
		fmt.Println("Erase failed:", err)
		return
	}
	fmt.Println("Local data erased, next sync is skipped")
}
