//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package dataset defines the synthetic e-commerce entities, the table
// catalog shared by the writer and the store backends, and the error kinds
// reported by every pipeline stage.
package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Dataset is one complete generated dataset. It is built once per run and
// never patched; regeneration replaces it.
type Dataset struct {
	Seed       uint64
	Users      []User
	Products   []Product
	Orders     []Order
	OrderItems []OrderItem
	Payments   []Payment
}

// Counts maps table name to row count.
type Counts map[string]int64

// Diff returns a description of every table whose count differs from other,
// in catalog order. An empty result means the counts match.
func (c Counts) Diff(other Counts) []string {
	var diffs []string
	for _, name := range TableNames() {
		if c[name] != other[name] {
			diffs = append(diffs, fmt.Sprintf("%s: expected %d rows, got %d", name, c[name], other[name]))
		}
	}
	return diffs
}

// Total returns the number of rows across all tables.
func (c Counts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// Counts returns the number of records per table.
func (d *Dataset) Counts() Counts {
	return Counts{
		TableUsers:      int64(len(d.Users)),
		TableProducts:   int64(len(d.Products)),
		TableOrders:     int64(len(d.Orders)),
		TableOrderItems: int64(len(d.OrderItems)),
		TablePayments:   int64(len(d.Payments)),
	}
}

// Records returns the CSV rows of table, without header.
func (d *Dataset) Records(table string) ([][]string, error) {
	var rows [][]string
	switch table {
	case TableUsers:
		rows = make([][]string, 0, len(d.Users))
		for _, u := range d.Users {
			rows = append(rows, u.Record())
		}
	case TableProducts:
		rows = make([][]string, 0, len(d.Products))
		for _, p := range d.Products {
			rows = append(rows, p.Record())
		}
	case TableOrders:
		rows = make([][]string, 0, len(d.Orders))
		for _, o := range d.Orders {
			rows = append(rows, o.Record())
		}
	case TableOrderItems:
		rows = make([][]string, 0, len(d.OrderItems))
		for _, i := range d.OrderItems {
			rows = append(rows, i.Record())
		}
	case TablePayments:
		rows = make([][]string, 0, len(d.Payments))
		for _, p := range d.Payments {
			rows = append(rows, p.Record())
		}
	default:
		return nil, fmt.Errorf("unknown table: %s", table)
	}
	return rows, nil
}

// ItemsByOrder groups order items by order id.
func (d *Dataset) ItemsByOrder() map[int64][]OrderItem {
	items := make(map[int64][]OrderItem, len(d.Orders))
	for _, it := range d.OrderItems {
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items
}

// CheckIntegrity verifies every invariant of the dataset: dense unique ids,
// resolvable references, non-negative prices, positive quantities, line and
// order totals, and one payment per order for the exact order total.
// Unresolved references wrap ErrReferential; everything else wraps
// ErrValidation.
func (d *Dataset) CheckIntegrity() error {
	for i, u := range d.Users {
		if u.ID != int64(i+1) {
			return fmt.Errorf("%w: users: id %d at position %d", ErrValidation, u.ID, i+1)
		}
	}

	products := make(map[int64]Product, len(d.Products))
	for i, p := range d.Products {
		if p.ID != int64(i+1) {
			return fmt.Errorf("%w: products: id %d at position %d", ErrValidation, p.ID, i+1)
		}
		if p.Price < 0 {
			return fmt.Errorf("%w: product %d has negative price %s", ErrValidation, p.ID, p.Price)
		}
		products[p.ID] = p
	}

	orders := make(map[int64]Order, len(d.Orders))
	for i, o := range d.Orders {
		if o.ID != int64(i+1) {
			return fmt.Errorf("%w: orders: id %d at position %d", ErrValidation, o.ID, i+1)
		}
		if o.UserID < 1 || o.UserID > int64(len(d.Users)) {
			return fmt.Errorf("%w: order %d references missing user %d", ErrReferential, o.ID, o.UserID)
		}
		if o.OrderDate.Before(d.Users[o.UserID-1].SignupDate) {
			return fmt.Errorf("%w: order %d placed before user %d signed up", ErrValidation, o.ID, o.UserID)
		}
		orders[o.ID] = o
	}

	sums := make(map[int64]Money, len(d.Orders))
	for i, it := range d.OrderItems {
		if it.ID != int64(i+1) {
			return fmt.Errorf("%w: order_items: id %d at position %d", ErrValidation, it.ID, i+1)
		}
		if _, ok := orders[it.OrderID]; !ok {
			return fmt.Errorf("%w: order item %d references missing order %d", ErrReferential, it.ID, it.OrderID)
		}
		p, ok := products[it.ProductID]
		if !ok {
			return fmt.Errorf("%w: order item %d references missing product %d", ErrReferential, it.ID, it.ProductID)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: order item %d has quantity %d", ErrValidation, it.ID, it.Quantity)
		}
		if it.UnitPrice != p.Price {
			return fmt.Errorf("%w: order item %d unit price %s differs from product price %s",
				ErrValidation, it.ID, it.UnitPrice, p.Price)
		}
		if it.LineTotal != Money(it.Quantity)*it.UnitPrice {
			return fmt.Errorf("%w: order item %d line total %s != %d x %s",
				ErrValidation, it.ID, it.LineTotal, it.Quantity, it.UnitPrice)
		}
		sums[it.OrderID] += it.LineTotal
	}

	for _, o := range d.Orders {
		if o.TotalAmount != sums[o.ID] {
			return fmt.Errorf("%w: order %d total %s != sum of items %s",
				ErrValidation, o.ID, o.TotalAmount, sums[o.ID])
		}
	}

	paid := make(map[int64]int, len(d.Orders))
	for _, p := range d.Payments {
		o, ok := orders[p.OrderID]
		if !ok {
			return fmt.Errorf("%w: payment %d references missing order %d", ErrReferential, p.ID, p.OrderID)
		}
		if p.Amount != o.TotalAmount {
			return fmt.Errorf("%w: payment %d amount %s != order %d total %s",
				ErrValidation, p.ID, p.Amount, o.ID, o.TotalAmount)
		}
		paid[p.OrderID]++
	}

	var unpaid []string
	for _, o := range d.Orders {
		if paid[o.ID] != 1 {
			unpaid = append(unpaid, fmt.Sprintf("%d(%d)", o.ID, paid[o.ID]))
		}
	}
	if len(unpaid) > 0 {
		sort.Strings(unpaid)
		return fmt.Errorf("%w: orders without exactly one payment: %s",
			ErrValidation, strings.Join(unpaid, ", "))
	}

	return nil
}
