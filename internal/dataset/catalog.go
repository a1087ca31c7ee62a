//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// Table names, in dependency order.
const (
	TableUsers      = "users"
	TableProducts   = "products"
	TableOrders     = "orders"
	TableOrderItems = "order_items"
	TablePayments   = "payments"
)

// ColumnType is the logical type of a column, shared by the CSV writer and
// every store backend.
type ColumnType int

const (
	TypeInt ColumnType = iota
	TypeText
	TypeMoney
	TypeDate
	TypeTimestamp
)

// Column describes one attribute of an entity table.
type Column struct {
	Name string
	Type ColumnType
}

// Parse converts a CSV cell into the Go value a store backend inserts:
// int64, string, float64 (money) or time.Time.
func (c Column) Parse(cell string) (any, error) {
	switch c.Type {
	case TypeInt:
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: invalid integer %q", c.Name, cell)
		}
		return v, nil
	case TypeMoney:
		m, err := ParseMoney(cell)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return m.Float(), nil
	case TypeDate:
		t, err := time.Parse(DateLayout, cell)
		if err != nil {
			return nil, fmt.Errorf("column %s: invalid date %q", c.Name, cell)
		}
		return t, nil
	case TypeTimestamp:
		t, err := time.Parse(TimestampLayout, cell)
		if err != nil {
			return nil, fmt.Errorf("column %s: invalid timestamp %q", c.Name, cell)
		}
		return t, nil
	default:
		return cell, nil
	}
}

// ForeignKey is a reference from Column to RefTable's primary key.
type ForeignKey struct {
	Column   string
	RefTable string
}

// Table describes one entity table: its interchange file, column order,
// primary key and foreign keys.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  string
	ForeignKeys []ForeignKey
}

// FileName returns the interchange file name for the table.
func (t Table) FileName() string {
	return t.Name + ".csv"
}

// ColumnNames returns the header row.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Catalog lists every entity table in dependency order: a table only
// references tables that appear before it.
var Catalog = []Table{
	{
		Name: TableUsers,
		Columns: []Column{
			{"user_id", TypeInt},
			{"first_name", TypeText},
			{"last_name", TypeText},
			{"email", TypeText},
			{"phone", TypeText},
			{"signup_date", TypeDate},
			{"loyalty_status", TypeText},
			{"country", TypeText},
		},
		PrimaryKey: "user_id",
	},
	{
		Name: TableProducts,
		Columns: []Column{
			{"product_id", TypeInt},
			{"name", TypeText},
			{"category", TypeText},
			{"price", TypeMoney},
			{"stock_qty", TypeInt},
			{"created_at", TypeDate},
		},
		PrimaryKey: "product_id",
	},
	{
		Name: TableOrders,
		Columns: []Column{
			{"order_id", TypeInt},
			{"user_id", TypeInt},
			{"order_date", TypeTimestamp},
			{"status", TypeText},
			{"payment_method", TypeText},
			{"shipping_address", TypeText},
			{"total_amount", TypeMoney},
		},
		PrimaryKey:  "order_id",
		ForeignKeys: []ForeignKey{{Column: "user_id", RefTable: TableUsers}},
	},
	{
		Name: TableOrderItems,
		Columns: []Column{
			{"order_item_id", TypeInt},
			{"order_id", TypeInt},
			{"product_id", TypeInt},
			{"quantity", TypeInt},
			{"unit_price", TypeMoney},
			{"line_total", TypeMoney},
		},
		PrimaryKey: "order_item_id",
		ForeignKeys: []ForeignKey{
			{Column: "order_id", RefTable: TableOrders},
			{Column: "product_id", RefTable: TableProducts},
		},
	},
	{
		Name: TablePayments,
		Columns: []Column{
			{"payment_id", TypeInt},
			{"order_id", TypeInt},
			{"payment_method", TypeText},
			{"amount", TypeMoney},
			{"payment_status", TypeText},
			{"payment_date", TypeTimestamp},
			{"transaction_id", TypeText},
		},
		PrimaryKey:  "payment_id",
		ForeignKeys: []ForeignKey{{Column: "order_id", RefTable: TableOrders}},
	},
}

// TableNames returns the catalog table names in dependency order.
func TableNames() []string {
	names := make([]string, len(Catalog))
	for i, t := range Catalog {
		names[i] = t.Name
	}
	return names
}

// LookupTable returns the catalog entry for name.
func LookupTable(name string) (Table, bool) {
	for _, t := range Catalog {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
