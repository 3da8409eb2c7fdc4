package cli

import (
	"context"
	"fmt"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password (with confirmation) and
// creates an account. A successful registration leaves the user logged in
// and reconciles the cache.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password (min 10 characters)", os.Stdout)
	if err != nil {
		return err
	}
	confirm, err := getPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.Register(ctx, username, password, confirm); err != nil {
		fmt.Println("Registration failed:", err)
		return err
	}

	fmt.Println("Success!")
	a.afterLogin(ctx)
	return nil
}

// Login prompts for credentials and authenticates. On success the cache is
// reconciled with the backend.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.Login(ctx, username, password); err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	fmt.Println("Logged in")
	a.afterLogin(ctx)
	return nil
}

// Logout drops the session. Cached data stays on disk under the identity
// scope and becomes reachable again on the next login.
func (a *App) Logout(ctx context.Context) {
	a.auth.Logout(ctx)
	fmt.Println("Logged out")
}

func (a *App) afterLogin(ctx context.Context) {
	a.limits.Load(ctx)
	a.sync.PullFromBackend(ctx)
}
