package generate

import (
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-ecomgen/internal/datagen"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
)

var (
	orderStatuses = []string{"pending", "shipped", "delivered", "cancelled"}
	orderWeights  = []int{20, 40, 35, 5}

	paymentStatuses = []string{"initiated", "completed", "failed", "refunded"}
	paymentWeights  = []int{10, 75, 10, 5}
)

const (
	statusCancelled = "cancelled"
	statusRefunded  = "refunded"

	minPaymentDelay = 10 * time.Minute
	maxPaymentDelay = 240 * time.Minute
)

// linkOrders assigns every order to an existing user. An order is never
// placed before its owner signed up.
func linkOrders(c *Context) error {
	count := c.opts.OrderCount
	users := c.ds.Users
	if count > 0 && len(users) == 0 {
		return fmt.Errorf("%w: %d orders requested but no users exist", dataset.ErrReferential, count)
	}

	logging.Info().Int("count", count).Msg("Generating orders")
	progress := c.progress(dataset.TableOrders, count)

	from := c.now.AddDate(-1, 0, 0)
	orders := make([]dataset.Order, 0, count)
	for i := 1; i <= count; i++ {
		user := datagen.Choose(c.faker, users)
		start := from
		if user.SignupDate.After(start) {
			start = user.SignupDate
		}
		orders = append(orders, dataset.Order{
			ID:              int64(i),
			UserID:          user.ID,
			OrderDate:       c.faker.DateRange(start, c.now).UTC().Truncate(time.Second),
			Status:          datagen.ChooseWeighted(c.faker, orderStatuses, orderWeights),
			PaymentMethod:   datagen.Choose(c.faker, c.opts.PaymentMethods),
			ShippingAddress: c.faker.Address(),
		})
		progress.Update(1)
	}

	c.ds.Orders = orders
	progress.Done()
	return nil
}

// linkOrderItems gives every order 1..min(max_items_per_order, products)
// distinct products, then sets each order total to the sum of its lines.
func linkOrderItems(c *Context) error {
	products := c.ds.Products
	if len(c.ds.Orders) > 0 && len(products) == 0 {
		return fmt.Errorf("%w: %d orders need items but no products exist", dataset.ErrReferential, len(c.ds.Orders))
	}

	maxItems := min(c.opts.MaxItemsPerOrder, len(products))
	logging.Info().
		Int("orders", len(c.ds.Orders)).
		Int("max_items", maxItems).
		Msg("Generating order items")
	progress := c.progress(dataset.TableOrderItems, len(c.ds.Orders)*maxItems)

	items := make([]dataset.OrderItem, 0, len(c.ds.Orders)*(maxItems+1)/2)
	for oi := range c.ds.Orders {
		order := &c.ds.Orders[oi]
		picked := datagen.Sample(c.faker, products, c.faker.Int(1, maxItems))

		var total dataset.Money
		for _, p := range picked {
			qty := c.faker.Int(1, c.opts.MaxQuantity)
			line := dataset.OrderItem{
				ID:        int64(len(items) + 1),
				OrderID:   order.ID,
				ProductID: p.ID,
				Quantity:  qty,
				UnitPrice: p.Price,
				LineTotal: dataset.Money(qty) * p.Price,
			}
			total += line.LineTotal
			items = append(items, line)
		}
		order.TotalAmount = total
		progress.Update(int64(len(picked)))
	}

	c.ds.OrderItems = items
	progress.Done()
	return nil
}

// linkPayments settles every order with exactly one payment for its total.
// Payment ids equal order ids.
func linkPayments(c *Context) error {
	orders := c.ds.Orders
	logging.Info().Int("count", len(orders)).Msg("Generating payments")
	progress := c.progress(dataset.TablePayments, len(orders))

	payments := make([]dataset.Payment, 0, len(orders))
	for _, o := range orders {
		status := datagen.ChooseWeighted(c.faker, paymentStatuses, paymentWeights)
		if o.Status == statusCancelled {
			status = statusRefunded
		}
		delay := time.Duration(c.faker.Int64(int64(minPaymentDelay/time.Minute), int64(maxPaymentDelay/time.Minute))) * time.Minute
		id := o.ID

		payments = append(payments, dataset.Payment{
			ID:            id,
			OrderID:       o.ID,
			PaymentMethod: o.PaymentMethod,
			Amount:        o.TotalAmount,
			Status:        status,
			PaymentDate:   o.OrderDate.Add(delay),
			TransactionID: c.unique("transaction_id", func() string {
				return c.faker.Numerify("PAY#######")
			}, func(txn string) string {
				return fmt.Sprintf("%s-%d", txn, id)
			}),
		})
		progress.Update(1)
	}

	c.ds.Payments = payments
	progress.Done()
	return nil
}
