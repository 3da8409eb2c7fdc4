package cli

import (
	"context"
	"fmt"
)

func (a *App) pull(ctx context.Context) {
	if a.sync.PullFromBackend(ctx) {
		fmt.Println("Synchronized with the server")
	} else {
		fmt.Println("Synchronization skipped or failed")
	}
}

func (a *App) pushAll(ctx context.Context) {
	n := a.sync.PushAllWeights(ctx)
	fmt.Printf("Pushed %d record(s)\n", n)
}

func (a *App) setSyncDisabled(ctx context.Context, disabled bool) {
	if err := a.store.SetSyncDisabled(ctx, disabled); err != nil {
		fmt.Println("Could not update the sync flag:", err)
		return
	}
	if disabled {
		fmt.Println("Sync disabled, data stays local")
	} else {
		fmt.Println("Sync enabled")
	}
}
