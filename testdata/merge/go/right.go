package shop

import "fmt"

// Cart holds the items of one order.
type Cart struct {
	Items []string
}

func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) Add(item string) {
	if item == "" {
		return
	}
	c.Items = append(c.Items, item)
}

func (c *Cart) Describe() string {
	return fmt.Sprintf("%d items", len(c.Items))
}
