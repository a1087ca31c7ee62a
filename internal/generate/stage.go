package generate

import (
	"fmt"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
)

// stage produces one entity table. A stage may only read the tables listed
// in requires.
type stage struct {
	name     string
	requires []string
	run      func(*Context) error
}

// stages is the fixed generation order. Order totals are folded in by the
// order_items stage, so payments depend on it rather than on orders alone.
var stages = []stage{
	{name: dataset.TableUsers, run: generateUsers},
	{name: dataset.TableProducts, run: generateProducts},
	{name: dataset.TableOrders, requires: []string{dataset.TableUsers}, run: linkOrders},
	{name: dataset.TableOrderItems, requires: []string{dataset.TableOrders, dataset.TableProducts}, run: linkOrderItems},
	{name: dataset.TablePayments, requires: []string{dataset.TableOrderItems}, run: linkPayments},
}

// checkStageOrder verifies that every stage runs after the stages it
// requires and that each name appears once.
func checkStageOrder(list []stage) error {
	done := make(map[string]bool, len(list))
	for _, s := range list {
		if done[s.name] {
			return fmt.Errorf("stage %s listed twice", s.name)
		}
		for _, req := range s.requires {
			if !done[req] {
				return fmt.Errorf("stage %s requires %s", s.name, req)
			}
		}
		done[s.name] = true
	}
	return nil
}

func stageNames() []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}
