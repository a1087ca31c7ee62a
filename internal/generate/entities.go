package generate

import (
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-ecomgen/internal/datagen"
	"github.com/pgEdge/pgedge-ecomgen/internal/dataset"
	"github.com/pgEdge/pgedge-ecomgen/internal/logging"
)

// Reference data
var (
	loyaltyStatuses = []string{"bronze", "silver", "gold", "platinum"}
	loyaltyWeights  = []int{40, 30, 20, 10}

	productCategories = []string{"electronics", "fashion", "home", "beauty", "sports", "books"}
)

// Price bounds in cents.
const (
	minPrice    = 10_00
	maxPrice    = 800_00
	minStockQty = 10
	maxStockQty = 500
)

func generateUsers(c *Context) error {
	count := c.opts.UserCount
	logging.Info().Int("count", count).Msg("Generating users")
	progress := c.progress(dataset.TableUsers, count)

	from := c.now.AddDate(-2, 0, 0)
	users := make([]dataset.User, 0, count)
	for i := 1; i <= count; i++ {
		id := int64(i)
		users = append(users, dataset.User{
			ID:        id,
			FirstName: c.faker.FirstName(),
			LastName:  c.faker.LastName(),
			Email: c.unique("email", c.faker.Email, func(email string) string {
				local, domain, _ := strings.Cut(email, "@")
				return fmt.Sprintf("%s.%d@%s", local, id, domain)
			}),
			Phone: c.unique("phone", c.faker.Phone, func(phone string) string {
				return fmt.Sprintf("%s x%d", phone, id)
			}),
			SignupDate:    c.faker.Day(from, c.now),
			LoyaltyStatus: datagen.ChooseWeighted(c.faker, loyaltyStatuses, loyaltyWeights),
			Country:       c.faker.Country(),
		})
		progress.Update(1)
	}

	c.ds.Users = users
	progress.Done()
	return nil
}

func generateProducts(c *Context) error {
	count := c.opts.ProductCount
	logging.Info().Int("count", count).Msg("Generating products")
	progress := c.progress(dataset.TableProducts, count)

	from := c.now.AddDate(-3, 0, 0)
	products := make([]dataset.Product, 0, count)
	for i := 1; i <= count; i++ {
		products = append(products, dataset.Product{
			ID:        int64(i),
			Name:      c.faker.TitleWords(2),
			Category:  datagen.Choose(c.faker, productCategories),
			Price:     dataset.Money(c.faker.Int64(minPrice, maxPrice)),
			StockQty:  c.faker.Int(minStockQty, maxStockQty),
			CreatedAt: c.faker.Day(from, c.now),
		})
		progress.Update(1)
	}

	c.ds.Products = products
	progress.Done()
	return nil
}
