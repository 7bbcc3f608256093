package shop

import "fmt"

// Cart holds the items of one order.
type Cart struct {
	Items []string
}

func (c *Cart) Add(item string) {
	c.Items = append(c.Items, item)
}

func (c *Cart) Describe() string {
	return fmt.Sprintf("%d item(s)", len(c.Items))
}
