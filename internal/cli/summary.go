package cli

import (
	"context"
	"fmt"

	"pillarlog/internal/engine"
	"pillarlog/internal/models"
)

// SummaryCmd prints the dashboard overview to stdout.
type SummaryCmd struct{}

func (c *SummaryCmd) Run(appCtx *Context) error {
	cfg, err := appCtx.loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	provider, err := openProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	if err := provider.Init(ctx); err != nil {
		return err
	}

	overview, err := engine.New(provider).DashboardOverview(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Last 7 days (%s - %s)\n",
		overview.WindowStart.Format("2006-01-02 15:04"),
		overview.WindowEnd.Format("2006-01-02 15:04"))
	for _, p := range models.Pillars() {
		minutes := overview.PerPillar[p]
		fmt.Printf("  %-10s %2dh %02dm\n", p, minutes/60, minutes%60)
	}

	if len(overview.ActiveGoals) > 0 {
		fmt.Println("Active goals:")
		for _, gp := range overview.ActiveGoals {
			fmt.Printf("  %s (%s): %d%%\n", gp.Goal.Title, gp.Goal.Pillar, gp.Progress.PercentComplete)
		}
	}
	if len(overview.TasksDueSoon) > 0 {
		fmt.Println("Due soon:")
		for _, t := range overview.TasksDueSoon {
			fmt.Printf("  %s (%s) due %s\n", t.Title, t.Pillar, t.DueBy.Format("2006-01-02"))
		}
	}
	return nil
}
