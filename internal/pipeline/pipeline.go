//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline drives one run through its states:
// Empty, Generated, Written, SchemaReady, Loaded, Validated.
package pipeline

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-ecomgen/internal/csvio"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/generate"
	"github.com/pgEdge/pgedge-ecomgen/internal/loader"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
	"github.com/pgEdge/pgedge-ecomgen/internal/store"
)

// State is the progress of a run.
type State int

const (
	Empty State = iota
	Generated
	Written
	SchemaReady
	Loaded
	Validated
)

var stateNames = [...]string{"Empty", "Generated", "Written", "SchemaReady", "Loaded", "Validated"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Pipeline is one run. It is not safe for concurrent use.
type Pipeline struct {
	opts   generate.Options
	writer *csvio.Writer
	loader *loader.Loader

	state      State
	failedStep string
	err        error

	dataset  *dataset.Dataset
	manifest *csvio.Manifest
	result   *loader.Result
}

// New creates a run that generates with opts, writes into outDir and loads
// into s. A nil store is allowed for runs that stop at Written.
func New(opts generate.Options, outDir string, s store.Store) *Pipeline {
	p := &Pipeline{
		opts:   opts,
		writer: csvio.NewWriter(outDir),
	}
	if s != nil {
		p.loader = loader.New(s)
	}
	return p
}

// Resume creates a run for files already written to dir, starting at
// Written.
func Resume(dir string, manifest *csvio.Manifest, s store.Store) *Pipeline {
	p := New(generate.Options{Seed: manifest.Seed}, dir, s)
	p.manifest = manifest
	p.state = Written
	return p
}

// State returns the current state.
func (p *Pipeline) State() State {
	return p.state
}

// Failure returns the step that failed last and its error, if any.
func (p *Pipeline) Failure() (string, error) {
	return p.failedStep, p.err
}

// Dataset returns the generated dataset, or nil before Generated.
func (p *Pipeline) Dataset() *dataset.Dataset {
	return p.dataset
}

// Manifest returns the written manifest, or nil before Written.
func (p *Pipeline) Manifest() *csvio.Manifest {
	return p.manifest
}

// Result returns the committed load, or nil before Validated.
func (p *Pipeline) Result() *loader.Result {
	return p.result
}

// Dir returns the interchange file directory.
func (p *Pipeline) Dir() string {
	return p.writer.Dir()
}

// advance moves to the next state. Only single forward steps are allowed.
func (p *Pipeline) advance(to State) {
	logging.Stage(to.String()).
		Str("from", p.state.String()).
		Msg("State changed")
	p.state = to
}

func (p *Pipeline) expect(step string, from State) error {
	if p.state != from {
		return fmt.Errorf("cannot %s in state %s, expected %s", step, p.state, from)
	}
	return nil
}

func (p *Pipeline) fail(step string, err error) error {
	p.failedStep = step
	p.err = err
	logging.Error().Err(err).Str("step", step).Str("state", p.state.String()).Msg("Step failed")
	return fmt.Errorf("%s: %w", step, err)
}

// Generate builds the dataset.
func (p *Pipeline) Generate() error {
	const step = "generate"
	if err := p.expect(step, Empty); err != nil {
		return err
	}
	ds, err := generate.Generate(p.opts)
	if err != nil {
		return p.fail(step, err)
	}
	p.dataset = ds
	p.advance(Generated)
	return nil
}

// Write writes the interchange files and manifest.
func (p *Pipeline) Write() error {
	const step = "write"
	if err := p.expect(step, Generated); err != nil {
		return err
	}
	m, err := p.writer.Write(p.dataset)
	if err != nil {
		return p.fail(step, err)
	}
	p.manifest = m
	p.advance(Written)
	return nil
}

// BuildSchema recreates the empty schema.
func (p *Pipeline) BuildSchema(ctx context.Context) error {
	const step = "build schema"
	if err := p.expect(step, Written); err != nil {
		return err
	}
	if p.loader == nil {
		return p.fail(step, fmt.Errorf("%w: no store configured", dataset.ErrConfiguration))
	}
	if err := p.loader.BuildSchema(ctx); err != nil {
		return p.fail(step, err)
	}
	p.advance(SchemaReady)
	return nil
}

// Load loads and validates the files in one transaction. On failure the
// run returns to SchemaReady with empty tables.
func (p *Pipeline) Load(ctx context.Context) error {
	const step = "load"
	if err := p.expect(step, SchemaReady); err != nil {
		return err
	}
	p.loader.OnLoaded(func() { p.advance(Loaded) })

	res, err := p.loader.Load(ctx, p.writer.Dir(), p.manifest)
	if err != nil {
		if p.state != SchemaReady {
			logging.Stage(SchemaReady.String()).
				Str("from", p.state.String()).
				Msg("Rolled back")
			p.state = SchemaReady
		}
		return p.fail(step, err)
	}
	p.result = res
	p.advance(Validated)
	return nil
}

// Run drives the pipeline from its current state to Validated, stopping at
// the first failure.
func (p *Pipeline) Run(ctx context.Context) error {
	steps := []struct {
		from State
		run  func() error
	}{
		{Empty, p.Generate},
		{Generated, p.Write},
		{Written, func() error { return p.BuildSchema(ctx) }},
		{SchemaReady, func() error { return p.Load(ctx) }},
	}
	for _, s := range steps {
		if p.state != s.from {
			continue
		}
		if err := s.run(); err != nil {
			return err
		}
	}
	return nil
}
