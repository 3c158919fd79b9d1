package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/promovista/promovista-backend/internal/app"
	"github.com/promovista/promovista-backend/internal/types"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var tenant string
	var baselines idList
	var parallel int
	var dryRun bool
	flag.StringVar(&tenant, "tenant", "", "tenant id (required)")
	flag.Var(&baselines, "baseline", "baseline id to recalculate (repeatable; default: all active)")
	flag.IntVar(&parallel, "parallel", 4, "max baselines recalculated concurrently")
	flag.BoolVar(&dryRun, "dry-run", false, "print planned recalculations without running them")
	flag.Parse()

	tenantID, err := uuid.Parse(strings.TrimSpace(tenant))
	if err != nil || tenantID == uuid.Nil {
		fmt.Println("a valid -tenant id is required")
		os.Exit(1)
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()

	ids := make([]uuid.UUID, 0, len(baselines))
	for _, s := range baselines {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err == nil && id != uuid.Nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		var rows []*types.Baseline
		err := application.DB.WithContext(ctx).
			Where("tenant_id = ? AND status = ?", tenantID, types.BaselineStatusActive).
			Find(&rows).Error
		if err != nil {
			fmt.Printf("list active baselines: %v\n", err)
			os.Exit(1)
		}
		for _, row := range rows {
			if row != nil && row.ID != uuid.Nil {
				ids = append(ids, row.ID)
			}
		}
	}
	if len(ids) == 0 {
		fmt.Println("no baselines to recalculate")
		return
	}

	if dryRun {
		for _, id := range ids {
			fmt.Printf("would recalculate baseline %s\n", id)
		}
		return
	}

	// Different baselines are independent; each one is still serialized
	// internally by the calculation lock.
	if parallel < 1 {
		parallel = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if _, err := application.Baselines.Calculate(gctx, tenantID, id); err != nil {
				fmt.Printf("baseline %s: %v\n", id, err)
				return nil
			}
			fmt.Printf("baseline %s recalculated\n", id)
			return nil
		})
	}
	_ = g.Wait()
}
