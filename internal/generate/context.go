package generate

import (
	"time"

	"github.com/pgEdge/pgedge-ecomgen/internal/datagen"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
)

// maxUniqueAttempts bounds the retries for a unique value before the
// caller's fallback is used.
const maxUniqueAttempts = 20

// Context carries the state shared by every stage of one run: the seeded
// faker, the options, and the dataset under construction. Nothing outside a
// Context holds random state.
type Context struct {
	faker *datagen.Faker
	cfg   datagen.BatchInsertConfig
	opts  Options
	now   time.Time
	ds    *dataset.Dataset

	seen map[string]map[string]struct{}
}

func newContext(opts Options) *Context {
	return &Context{
		faker: datagen.NewFaker(opts.Seed),
		cfg:   datagen.DefaultBatchConfig(),
		opts:  opts,
		now:   opts.referenceDate(),
		ds:    &dataset.Dataset{Seed: opts.Seed},
		seen:  make(map[string]map[string]struct{}),
	}
}

// unique returns a value from gen not yet returned for kind. After
// maxUniqueAttempts collisions it returns fallback(candidate), which must be
// unique on its own.
func (c *Context) unique(kind string, gen func() string, fallback func(string) string) string {
	set, ok := c.seen[kind]
	if !ok {
		set = make(map[string]struct{})
		c.seen[kind] = set
	}

	var v string
	for i := 0; i < maxUniqueAttempts; i++ {
		v = gen()
		if _, dup := set[v]; !dup {
			set[v] = struct{}{}
			return v
		}
	}
	v = fallback(v)
	set[v] = struct{}{}
	return v
}

func (c *Context) progress(table string, total int) *datagen.ProgressReporter {
	return datagen.NewProgressReporter(table, "Generating data", int64(total), c.cfg.ProgressInterval)
}
