package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/EchoCog/r9c/internal/logging"
	"github.com/EchoCog/r9c/internal/membrane"
)

var (
	stressWorkers int
	stressOps     int
	stressSeed    int64
)

// stressCmd hammers one registry with concurrent mixed traffic and then
// validates its invariants. Capacity rejections are expected under load
// and counted, not failed.
var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run concurrent mixed traffic against one registry, then validate",
	RunE:  runStress,
}

func runStress(cmd *cobra.Command, args []string) error {
	store, err := membrane.NewStoreWithSeed(limitsFromConfig(cfg), stressSeed)
	if err != nil {
		return err
	}

	// One root per worker so lifecycle churn stays in disjoint subtrees.
	roots := make([]membrane.ID, stressWorkers)
	for w := range roots {
		id, err := store.Create([]uint32{2, 2, 3})
		if err != nil {
			return fmt.Errorf("seed membrane %d: %w", w, err)
		}
		roots[w] = id
	}

	var ok, rejected atomic.Int64
	isRejection := func(err error) bool {
		if errors.Is(err, membrane.ErrCapacityExceeded) || errors.Is(err, membrane.ErrAllocationFailure) {
			rejected.Add(1)
			return true
		}
		return false
	}

	logging.Registry("stress: %d workers x %d ops", stressWorkers, stressOps)
	timer := logging.StartTimer(logging.CategoryRegistry, "stress")
	start := time.Now()

	eg, _ := errgroup.WithContext(context.Background())
	for w := 0; w < stressWorkers; w++ {
		root := roots[w]
		worker := w
		eg.Go(func() error {
			for i := 0; i < stressOps; i++ {
				switch (worker + i) % 6 {
				case 0:
					if err := store.SetElement(root, []int{0, i % 2}, float32(i)); err != nil {
						return fmt.Errorf("worker %d set: %w", worker, err)
					}
					ok.Add(1)
				case 1:
					if _, err := store.GetElement(root, []int{i % 2, i % 3}); err != nil {
						return fmt.Errorf("worker %d get: %w", worker, err)
					}
					ok.Add(1)
				case 2:
					child, err := store.CreateChild(root, []uint32{2, uint32(2 + i%3)})
					if err != nil {
						if isRejection(err) {
							continue
						}
						return fmt.Errorf("worker %d create-child: %w", worker, err)
					}
					if err := store.Destroy(child); err != nil {
						return fmt.Errorf("worker %d destroy: %w", worker, err)
					}
					ok.Add(2)
				case 3:
					symbol := fmt.Sprintf("sym-%d-%d", worker, i%20)
					if err := store.AddObject(root, symbol); err != nil {
						if isRejection(err) {
							continue
						}
						return fmt.Errorf("worker %d obj-add: %w", worker, err)
					}
					if err := store.RemoveObject(root, symbol); err != nil {
						return fmt.Errorf("worker %d remove: %w", worker, err)
					}
					ok.Add(2)
				case 4:
					if _, err := store.Describe(root); err != nil {
						return fmt.Errorf("worker %d describe: %w", worker, err)
					}
					store.Count()
					ok.Add(1)
				case 5:
					if err := store.Fill(root, float32(i)*0.5); err != nil {
						return fmt.Errorf("worker %d fill: %w", worker, err)
					}
					ok.Add(1)
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)
	timer.StopWithInfo()

	if err := store.Validate(); err != nil {
		return fmt.Errorf("registry invalid after stress: %w", err)
	}

	total := ok.Load()
	fmt.Printf("stress: %d workers x %d ops in %s\n", stressWorkers, stressOps, elapsed.Round(time.Millisecond))
	fmt.Printf("  completed: %d operations (%.0f ops/sec)\n", total, float64(total)/elapsed.Seconds())
	fmt.Printf("  capacity rejections: %d\n", rejected.Load())
	fmt.Printf("  live membranes: %d, registry valid\n", store.Count())
	return nil
}
