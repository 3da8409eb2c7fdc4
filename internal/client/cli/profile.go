package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/imctrack/imctrack/internal/client/models"
)

func (a *App) showProfile(ctx context.Context) {
	p := a.store.GetProfile(ctx)
	if p == nil {
		fmt.Println("No profile yet, use 'setprofile' to create one")
		return
	}
	fmt.Printf("Name:       %s %s\n", p.FirstName, p.LastName)
	if !p.BirthDate.IsZero() {
		fmt.Printf("Birth date: %s\n", p.BirthDate.Format(time.DateOnly))
	}
	fmt.Printf("Height:     %.2f m\n", p.HeightM)
}

// setProfile prompts for every profile field and submits the result as a
// whole; the backend replaces the record, it never patches.
func (a *App) setProfile(ctx context.Context) error {
	firstName, err := getSimpleText(a.reader, "First name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name", os.Stdout)
	if err != nil {
		return err
	}
	birthRaw, err := getSimpleText(a.reader, "Birth date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	heightRaw, err := getSimpleText(a.reader, "Height in meters (e.g. 1.75)", os.Stdout)
	if err != nil {
		return err
	}

	birth, err := time.Parse(time.DateOnly, birthRaw)
	if err != nil {
		fmt.Println("Invalid birth date, expected YYYY-MM-DD")
		return err
	}
	height, err := strconv.ParseFloat(heightRaw, 64)
	if err != nil {
		fmt.Println("Invalid height")
		return err
	}

	p := models.Profile{
		FirstName: firstName,
		LastName:  lastName,
		BirthDate: models.Date{Time: birth},
		HeightM:   height,
	}
	saved, err := a.tracker.SubmitProfile(ctx, p)
	if err != nil {
		fmt.Println("Profile rejected:", err)
		return err
	}

	fmt.Printf("Profile saved for %s %s\n", saved.FirstName, saved.LastName)
	return nil
}
