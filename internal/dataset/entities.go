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
	"strconv"
	"time"
)

// Layouts used for every date and timestamp written to interchange files.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// User is a customer account.
type User struct {
	ID            int64
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	SignupDate    time.Time
	LoyaltyStatus string
	Country       string
}

// Record returns the user's CSV cells in catalog column order.
func (u User) Record() []string {
	return []string{
		formatID(u.ID),
		u.FirstName,
		u.LastName,
		u.Email,
		u.Phone,
		u.SignupDate.Format(DateLayout),
		u.LoyaltyStatus,
		u.Country,
	}
}

// Product is a catalog item. Price is never negative.
type Product struct {
	ID        int64
	Name      string
	Category  string
	Price     Money
	StockQty  int
	CreatedAt time.Time
}

// Record returns the product's CSV cells in catalog column order.
func (p Product) Record() []string {
	return []string{
		formatID(p.ID),
		p.Name,
		p.Category,
		p.Price.String(),
		strconv.Itoa(p.StockQty),
		p.CreatedAt.Format(DateLayout),
	}
}

// Order is an order header owned by a user. TotalAmount is the sum of the
// line totals of its items.
type Order struct {
	ID              int64
	UserID          int64
	OrderDate       time.Time
	Status          string
	PaymentMethod   string
	ShippingAddress string
	TotalAmount     Money
}

// Record returns the order's CSV cells in catalog column order.
func (o Order) Record() []string {
	return []string{
		formatID(o.ID),
		formatID(o.UserID),
		o.OrderDate.Format(TimestampLayout),
		o.Status,
		o.PaymentMethod,
		o.ShippingAddress,
		o.TotalAmount.String(),
	}
}

// OrderItem is one product line of an order.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice Money
	LineTotal Money
}

// Record returns the item's CSV cells in catalog column order.
func (i OrderItem) Record() []string {
	return []string{
		formatID(i.ID),
		formatID(i.OrderID),
		formatID(i.ProductID),
		strconv.Itoa(i.Quantity),
		i.UnitPrice.String(),
		i.LineTotal.String(),
	}
}

// Payment settles exactly one order for its full total.
type Payment struct {
	ID            int64
	OrderID       int64
	PaymentMethod string
	Amount        Money
	Status        string
	PaymentDate   time.Time
	TransactionID string
}

// Record returns the payment's CSV cells in catalog column order.
func (p Payment) Record() []string {
	return []string{
		formatID(p.ID),
		formatID(p.OrderID),
		p.PaymentMethod,
		p.Amount.String(),
		p.Status,
		p.PaymentDate.Format(TimestampLayout),
		p.TransactionID,
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
