package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Opener connects to a store given a backend-specific connection string.
type Opener func(ctx context.Context, connection string) (Store, error)

var (
	registry = make(map[string]Opener)
	mu       sync.RWMutex
)

// Register adds a backend to the registry.
func Register(driver string, open Opener) {
	mu.Lock()
	defer mu.Unlock()
	registry[driver] = open
}

// Open connects to the store of the given driver.
func Open(ctx context.Context, driver, connection string) (Store, error) {
	mu.RLock()
	open, ok := registry[driver]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
	return open(ctx, connection)
}

// Drivers returns all registered driver names, sorted.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
