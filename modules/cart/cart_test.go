package cart

import (
	"testing"

	"bakerybot/modules/catalog"
)

func TestTotalMatchesLineSubtotals(t *testing.T) {
	c := New()
	if !c.IsEmpty() {
		t.Fatal("new cart should be empty")
	}
	if c.Total() != 0 {
		t.Fatalf("empty cart total = %d, expected 0", c.Total())
	}

	c.AddLine(Line{Item: "Cake", Kind: catalog.KindProduct, Quantity: 3, Price: 300})
	c.AddLine(Line{Item: "Baking 101", Kind: catalog.KindCourse, Quantity: 1, Price: 500})
	c.AddLine(Line{Item: "Cupcake", Kind: catalog.KindProduct, Quantity: 5, Price: 40})

	want := 3*300 + 1*500 + 5*40
	if c.Total() != want {
		t.Fatalf("total = %d, expected %d", c.Total(), want)
	}

	sum := 0
	for _, l := range c.Lines() {
		sum += l.Subtotal()
	}
	if sum != c.Total() {
		t.Fatalf("sum of subtotals %d != total %d", sum, c.Total())
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.AddLine(Line{Item: "Cake", Kind: catalog.KindProduct, Quantity: 1, Price: 300})
	if c.IsEmpty() {
		t.Fatal("cart should not be empty after AddLine")
	}
	c.Clear()
	if !c.IsEmpty() {
		t.Fatal("cart should be empty after Clear")
	}
	if c.Total() != 0 {
		t.Fatalf("cleared cart total = %d, expected 0", c.Total())
	}
}

func TestLinesReturnsSnapshot(t *testing.T) {
	c := New()
	c.AddLine(Line{Item: "Cake", Kind: catalog.KindProduct, Quantity: 2, Price: 300})

	snapshot := c.Lines()
	snapshot[0].Quantity = 99

	if got := c.Lines()[0].Quantity; got != 2 {
		t.Fatalf("mutating the snapshot changed the cart: quantity = %d", got)
	}
}
