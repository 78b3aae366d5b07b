// Package cart holds a conversation's selected line items. The cart is
// intentionally dumb storage: quantities are clamped by the selection flow
// before a line is ever added.
package cart

import "bakerybot/modules/catalog"

// Line is one selected item with its unit price and quantity.
type Line struct {
	Item     string
	Kind     catalog.Kind
	Quantity int
	Price    int
}

// Subtotal returns quantity times unit price.
func (l Line) Subtotal() int {
	return l.Quantity * l.Price
}

// Cart is an ordered sequence of lines owned by one conversation.
type Cart struct {
	lines []Line
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddLine appends a line to the cart.
func (c *Cart) AddLine(l Line) {
	c.lines = append(c.lines, l)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Total returns the sum of subtotals over all lines.
func (c *Cart) Total() int {
	total := 0
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Lines returns a read-only snapshot of the cart content.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}
