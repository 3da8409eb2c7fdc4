package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/imctrack/imctrack/internal/client/models"
)

func (a *App) addWeight(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: weight <kg>")
		return nil
	}
	kg, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Println("Invalid weight value:", args[0])
		return err
	}

	rec, err := a.tracker.SubmitWeight(ctx, kg)
	if err != nil {
		fmt.Println("Weight rejected:", err)
		return err
	}

	fmt.Printf("Recorded %.1f kg on %s\n", rec.WeightKg, rec.DayKey())
	if value, category, ok := a.tracker.BMI(ctx); ok {
		fmt.Printf("BMI: %.1f (%s)\n", value, category)
	}
	return nil
}

func (a *App) listWeights(ctx context.Context) {
	printRecords(a.store.GetWeights(ctx))
}

// recentWeights asks the backend for the latest records; it falls back to
// the local list when the call fails.
func (a *App) recentWeights(ctx context.Context) {
	records, err := a.client.RecentWeights(ctx, 10)
	if err != nil {
		fmt.Println("Server unavailable, showing local records")
		records = a.store.GetWeights(ctx)
		if len(records) > 10 {
			records = records[:10]
		}
	}
	printRecords(records)
}

func printRecords(records []models.WeightRecord) {
	if len(records) == 0 {
		fmt.Println("No weight records")
		return
	}
	for _, rec := range records {
		fmt.Printf("%s  %6.1f kg\n", rec.RecordedAt.UTC().Format(time.DateOnly), rec.WeightKg)
	}
}

func (a *App) showStats(ctx context.Context) {
	st := a.store.Stats(ctx)
	if st.Count == 0 {
		fmt.Println("No weight records")
		return
	}
	fmt.Printf("Records: %d  Max: %.1f kg  Min: %.1f kg\n", st.Count, st.Max, st.Min)
}

func (a *App) showBMI(ctx context.Context) {
	value, category, ok := a.tracker.BMI(ctx)
	if !ok {
		fmt.Println("BMI needs a profile and at least one weight record")
		return
	}
	fmt.Printf("BMI: %.1f (%s)\n", value, category)
}
