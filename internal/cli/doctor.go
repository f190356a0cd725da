package cli

import (
	"context"
	"fmt"
	"time"

	"pillarlog/internal/models"
	"pillarlog/internal/validation"
)

// DoctorCmd audits the stored schedule against the engine invariants:
// overlap, slot alignment, and dangling goal/task references. Useful after
// importing data that did not pass through the scheduler.
type DoctorCmd struct{}

func (c *DoctorCmd) Run(appCtx *Context) error {
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

	// Full scan on purpose: the audit covers the entire history.
	horizonStart := time.Unix(0, 0)
	horizonEnd := time.Now().AddDate(100, 0, 0)
	entries, err := provider.FindEntriesInRange(ctx, horizonStart, horizonEnd)
	if err != nil {
		return err
	}
	tasks, err := provider.ListTasks(ctx)
	if err != nil {
		return err
	}
	goals, err := provider.ListGoals(ctx)
	if err != nil {
		return err
	}

	taskIndex := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		taskIndex[t.ID] = t
	}
	goalIndex := make(map[string]models.Goal, len(goals))
	for _, g := range goals {
		goalIndex[g.ID] = g
	}

	validator := validation.New()
	entryResult := validator.ValidateEntries(entries, taskIndex)
	taskResult := validator.ValidateTasks(tasks, goalIndex)

	total := len(entryResult.Conflicts) + len(taskResult.Conflicts)
	fmt.Printf("Checked %d entries, %d tasks, %d goals\n", len(entries), len(tasks), len(goals))
	if total == 0 {
		fmt.Println("Schedule is consistent")
		return nil
	}
	if entryResult.HasConflicts() {
		fmt.Println(entryResult.FormatReport())
	}
	if taskResult.HasConflicts() {
		fmt.Println(taskResult.FormatReport())
	}
	return fmt.Errorf("%d invariant violation(s) found", total)
}
