package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

func (a *App) getStatus() string {
	s := ""
	if id := a.auth.Identity(); id != nil {
		s = id.Username + " "
	}
	if a.sync.Synced() {
		s += "synced"
	} else {
		s += "unsynced"
	}
	if exp, ok := a.auth.TokenExpiry(); ok {
		s += " " + tokenStatus(exp, time.Now())
	}
	return fmt.Sprintf("(%s)", s)
}

// tokenStatus renders the bearer token's remaining validity for the prompt.
func tokenStatus(expiry, now time.Time) string {
	left := expiry.Sub(now)
	if left <= 0 {
		return "token expired"
	}
	if left < time.Minute {
		return "token <1m"
	}
	return fmt.Sprintf("token %dm", int(left.Minutes()))
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("IMCTrack CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("imctrack %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.help()
		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "profile":
			a.showProfile(ctx)
		case "setprofile":
			a.setProfile(ctx)
		case "weight":
			a.addWeight(ctx, args)
		case "list":
			a.listWeights(ctx)
		case "recent":
			a.recentWeights(ctx)
		case "stats":
			a.showStats(ctx)
		case "bmi":
			a.showBMI(ctx)
		case "sync":
			a.pull(ctx)
		case "pushall":
			a.pushAll(ctx)
		case "syncoff":
			a.setSyncDisabled(ctx, true)
		case "syncon":
			a.setSyncDisabled(ctx, false)
		case "mockdate":
			a.devOnly(func() { a.mockDate(args) })
		case "offline":
			a.devOnly(func() { a.offline(args) })
		case "erase":
			a.devOnly(func() { a.erase(ctx) })
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}

}

func (a *App) help() {
	if a.isLoggedIn() {
		fmt.Println("Available commands: profile, setprofile, weight <kg>, list, recent, stats, bmi, sync, pushall, syncoff, syncon, logout, exit")
	} else {
		fmt.Println("Available commands: register, login, exit")
	}
	if a.config.DevMode {
		fmt.Println("Development commands: mockdate <YYYY-MM-DD|clear>, offline <on|off>, erase")
	}
}

func (a *App) devOnly(fn func()) {
	if !a.config.DevMode {
		fmt.Println("Command available only in development mode (-dev)")
		return
	}
	fn()
}
