//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package generate builds a complete, referentially consistent e-commerce
// dataset from a seed. Entities are produced by an ordered list of stages;
// every stage only reads what earlier stages produced.
package generate

import (
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
)

// DefaultReferenceDate anchors every generated date when Options leaves
// ReferenceDate unset.
var DefaultReferenceDate = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

// DefaultPaymentMethods is the payment method set used when none is given.
var DefaultPaymentMethods = []string{"card", "upi", "cod", "net_banking"}

// Options controls one generation run.
type Options struct {
	UserCount        int
	ProductCount     int
	OrderCount       int
	MaxItemsPerOrder int

	// MaxQuantity bounds the quantity of a single order line.
	MaxQuantity int

	// Seed must be non-zero; a zero seed would make the faker pick one at
	// random.
	Seed uint64

	PaymentMethods []string

	// ReferenceDate is the "today" of the dataset. Zero means
	// DefaultReferenceDate.
	ReferenceDate time.Time
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{
		UserCount:        200,
		ProductCount:     80,
		OrderCount:       600,
		MaxItemsPerOrder: 5,
		MaxQuantity:      4,
		Seed:             42,
		PaymentMethods:   append([]string(nil), DefaultPaymentMethods...),
		ReferenceDate:    DefaultReferenceDate,
	}
}

// Validate checks the options. Every failure wraps dataset.ErrConfiguration.
// Zero users or products is accepted here; the linker reports it as a
// referential error once orders need them.
func (o Options) Validate() error {
	if o.UserCount < 0 {
		return fmt.Errorf("%w: user_count must not be negative, got %d", dataset.ErrConfiguration, o.UserCount)
	}
	if o.ProductCount < 0 {
		return fmt.Errorf("%w: product_count must not be negative, got %d", dataset.ErrConfiguration, o.ProductCount)
	}
	if o.OrderCount < 1 {
		return fmt.Errorf("%w: order_count must be at least 1, got %d", dataset.ErrConfiguration, o.OrderCount)
	}
	if o.MaxItemsPerOrder < 1 {
		return fmt.Errorf("%w: max_items_per_order must be at least 1, got %d", dataset.ErrConfiguration, o.MaxItemsPerOrder)
	}
	if o.MaxQuantity < 1 {
		return fmt.Errorf("%w: max_quantity must be at least 1, got %d", dataset.ErrConfiguration, o.MaxQuantity)
	}
	if o.Seed == 0 {
		return fmt.Errorf("%w: seed must be non-zero", dataset.ErrConfiguration)
	}
	if len(o.PaymentMethods) == 0 {
		return fmt.Errorf("%w: payment_methods must not be empty", dataset.ErrConfiguration)
	}
	seen := make(map[string]bool, len(o.PaymentMethods))
	for _, m := range o.PaymentMethods {
		if m == "" {
			return fmt.Errorf("%w: payment_methods contains an empty method", dataset.ErrConfiguration)
		}
		if seen[m] {
			return fmt.Errorf("%w: payment method %q listed twice", dataset.ErrConfiguration, m)
		}
		seen[m] = true
	}
	return nil
}

func (o Options) referenceDate() time.Time {
	if o.ReferenceDate.IsZero() {
		return DefaultReferenceDate
	}
	return o.ReferenceDate.UTC()
}
