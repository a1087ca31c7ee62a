//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen provides seeded fake data generation utilities.
package datagen

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Faker provides fake data generation using gofakeit. Every Faker is
// seeded explicitly; two Fakers with the same seed produce the same
// sequence of values.
type Faker struct {
	faker *gofakeit.Faker
	title cases.Caser
}

// NewFaker creates a new Faker with a specific seed for reproducibility.
// A zero seed makes gofakeit pick a random one, so callers that need
// reproducible output must pass a non-zero seed.
func NewFaker(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
		title: cases.Title(language.English),
	}
}

// FirstName generates a random first name.
func (f *Faker) FirstName() string {
	return f.faker.FirstName()
}

// LastName generates a random last name.
func (f *Faker) LastName() string {
	return f.faker.LastName()
}

// Email generates a random email address.
func (f *Faker) Email() string {
	return f.faker.Email()
}

// Phone generates a random phone number.
func (f *Faker) Phone() string {
	return f.faker.Phone()
}

// Street generates a random street address.
func (f *Faker) Street() string {
	return f.faker.Street()
}

// City generates a random city name.
func (f *Faker) City() string {
	return f.faker.City()
}

// State generates a random US state abbreviation.
func (f *Faker) State() string {
	return f.faker.StateAbr()
}

// Zip generates a random US ZIP code.
func (f *Faker) Zip() string {
	return f.faker.Zip()
}

// Country generates a random country name.
func (f *Faker) Country() string {
	return f.faker.Country()
}

// Address generates a single-line postal address.
func (f *Faker) Address() string {
	return f.Street() + ", " + f.City() + ", " + f.State() + " " + f.Zip()
}

// Word generates a random word.
func (f *Faker) Word() string {
	return f.faker.Word()
}

// TitleWords generates n random words in title case, separated by spaces.
func (f *Faker) TitleWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = f.title.String(f.Word())
	}
	return strings.Join(words, " ")
}

// Numerify replaces every '#' in pattern with a random digit.
func (f *Faker) Numerify(pattern string) string {
	return f.faker.Numerify(pattern)
}

// DateRange generates a random time within [start, end].
func (f *Faker) DateRange(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	return f.faker.DateRange(start, end)
}

// Day generates a random calendar day (midnight UTC) within [start, end].
func (f *Faker) Day(start, end time.Time) time.Time {
	return f.DateRange(start, end).UTC().Truncate(24 * time.Hour)
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Int64 generates a random int64 between min and max (inclusive).
func (f *Faker) Int64(min, max int64) int64 {
	return int64(f.faker.IntRange(int(min), int(max)))
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}

// Sample returns k distinct elements of items in random order. If k exceeds
// len(items), every element is returned. items is not modified.
func Sample[T any](f *Faker, items []T, k int) []T {
	k = min(k, len(items))
	if k <= 0 {
		return nil
	}

	pool := make([]T, len(items))
	copy(pool, items)

	// Partial Fisher-Yates: the first k slots end up holding the sample.
	for i := 0; i < k; i++ {
		j := f.Int(i, len(pool)-1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
