package flow

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bakerybot/modules/catalog"
	"bakerybot/modules/orders"
)

const productsDoc = `[
  {
    "name": "Cakes",
    "category": "cake",
    "items": [
      {"item": "Cake", "price": 300, "callback_data": "cake_1"},
      {"item": "Cheesecake", "price": 450, "callback_data": "cake_2"}
    ]
  }
]`

const coursesDoc = `[
  {"item": "Baking 101", "type": "course", "description": "Learn to bake", "price": 500, "image_url": "baking101.jpg"}
]`

type testEnv struct {
	flow       *Flow
	ordersPath string
	mediaDir   string
}

func newTestEnv(t *testing.T, products, courses string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	productsPath := filepath.Join(dir, "products.json")
	coursesPath := filepath.Join(dir, "courses.json")
	ordersPath := filepath.Join(dir, "orders.json")
	if products != "" {
		if err := os.WriteFile(productsPath, []byte(products), 0o644); err != nil {
			t.Fatalf("write products: %v", err)
		}
	}
	if courses != "" {
		if err := os.WriteFile(coursesPath, []byte(courses), 0o644); err != nil {
			t.Fatalf("write courses: %v", err)
		}
	}
	cat := catalog.NewStore(productsPath, coursesPath)
	ord := orders.NewStore(ordersPath)
	return &testEnv{
		flow:       New(cat, ord, dir),
		ordersPath: ordersPath,
		mediaDir:   dir,
	}
}

func TestProductScenario(t *testing.T) {
	env := newTestEnv(t, productsDoc, coursesDoc)
	f := env.flow
	const user = int64(42)

	resp := f.Browse(user, catalog.KindProduct)
	if len(resp.Buttons) != 1 || resp.Buttons[0].Token != "cake" {
		t.Fatalf("unexpected category keyboard: %+v", resp.Buttons)
	}
	if st := f.Sessions().State(user); st != StateChoosingCategory {
		t.Fatalf("state = %s, expected %s", st, StateChoosingCategory)
	}

	resp = f.PickCategory(user, "cake")
	if len(resp.Buttons) != 2 {
		t.Fatalf("expected 2 item buttons, got %d", len(resp.Buttons))
	}
	if st := f.Sessions().State(user); st != StateChoosingItem {
		t.Fatalf("state = %s, expected %s", st, StateChoosingItem)
	}

	resp = f.PickItem(user, "cake_1")
	if !strings.Contains(resp.Text, "Cake") || !strings.Contains(resp.Text, "Quantity: 1") {
		t.Fatalf("unexpected description: %s", resp.Text)
	}
	if st := f.Sessions().State(user); st != StateAdjustingQuantity {
		t.Fatalf("state = %s, expected %s", st, StateAdjustingQuantity)
	}

	f.Adjust(user, ActionIncrease)
	resp = f.Adjust(user, ActionIncrease)
	if !strings.Contains(resp.Text, "Quantity: 3") {
		t.Fatalf("expected quantity 3, got: %s", resp.Text)
	}
	if !resp.Edit {
		t.Fatal("quantity re-render should edit in place")
	}

	resp = f.Adjust(user, ActionConfirm)
	if !strings.Contains(resp.Text, "added to your cart") {
		t.Fatalf("unexpected confirm response: %s", resp.Text)
	}
	if st := f.Sessions().State(user); st != StateIdle {
		t.Fatalf("state = %s, expected %s", st, StateIdle)
	}

	lines := f.Sessions().Get(user).Cart.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(lines))
	}
	line := lines[0]
	if line.Item != "Cake" || line.Quantity != 3 || line.Price != 300 || line.Kind != catalog.KindProduct {
		t.Fatalf("unexpected cart line: %+v", line)
	}
}

func TestCheckoutPersistsAndClears(t *testing.T) {
	env := newTestEnv(t, productsDoc, coursesDoc)
	f := env.flow
	const user = int64(42)

	f.Browse(user, catalog.KindProduct)
	f.PickCategory(user, "cake")
	f.PickItem(user, "cake_1")
	f.Adjust(user, ActionIncrease)
	f.Adjust(user, ActionIncrease)
	f.Adjust(user, ActionConfirm)

	resp := f.ViewCart(user)
	if !strings.Contains(resp.Text, "Total — 900") {
		t.Fatalf("cart total not rendered: %s", resp.Text)
	}
	if st := f.Sessions().State(user); st != StateViewingCart {
		t.Fatalf("state = %s, expected %s", st, StateViewingCart)
	}

	resp, err := f.ConfirmOrder(user)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if resp.Text != msgOrderPlaced {
		t.Fatalf("unexpected response: %s", resp.Text)
	}
	if !f.Sessions().Get(user).Cart.IsEmpty() {
		t.Fatal("cart should be empty after checkout")
	}

	history, err := orders.NewStore(env.ordersPath).GetOrders("42")
	if err != nil {
		t.Fatalf("get orders: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 order, got %d", len(history))
	}
	o := history[0]
	if o.OrderID != 1 || o.Item != "Cake" || o.Price != 900 || o.Paid {
		t.Fatalf("unexpected order: %+v", o)
	}
}

func TestQuantityStaysWithinBounds(t *testing.T) {
	env := newTestEnv(t, productsDoc, coursesDoc)
	f := env.flow
	const user = int64(1)

	f.Browse(user, catalog.KindProduct)
	f.PickCategory(user, "cake")
	f.PickItem(user, "cake_1")

	actions := []string{
		ActionDecrease, ActionDecrease, ActionIncrease, ActionIncrease,
		ActionIncrease, ActionIncrease, ActionIncrease, ActionIncrease,
		ActionIncrease, ActionDecrease,
	}
	for _, a := range actions {
		f.Adjust(user, a)
		q := f.Sessions().Get(user).Pending.Quantity
		if q < 1 || q > MaxQuantity {
			t.Fatalf("quantity %d out of [1, %d] after %s", q, MaxQuantity, a)
		}
	}

	// Seven increases clamp at 5; the trailing decrease lands on 4.
	if q := f.Sessions().Get(user).Pending.Quantity; q != 4 {
		t.Fatalf("quantity = %d, expected 4", q)
	}
}

func TestConfirmEmptyCartTouchesNothing(t *testing.T) {
	env := newTestEnv(t, productsDoc, coursesDoc)
	f := env.flow

	resp, err := f.ConfirmOrder(7)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if resp.Text != msgCartEmpty {
		t.Fatalf("unexpected response: %s", resp.Text)
	}
	if _, err := os.Stat(env.ordersPath); !os.IsNotExist(err) {
		t.Fatal("empty-cart confirm must not touch the order store")
	}
}

func TestBrowseEmptyCatalog(t *testing.T) {
	env := newTestEnv(t, "", "")
	f := env.flow

	resp := f.Browse(5, catalog.KindProduct)
	if resp.Text != msgNoProducts || len(resp.Buttons) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if st := f.Sessions().State(5); st != StateIdle {
		t.Fatalf("state = %s, expected idle", st)
	}

	resp = f.Browse(5, catalog.KindCourse)
	if resp.Text != msgNoCourses || len(resp.Buttons) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestStaleTokens(t *testing.T) {
	env := newTestEnv(t, productsDoc, coursesDoc)
	f := env.flow
	const user = int64(3)

	f.Browse(user, catalog.KindProduct)
	resp := f.PickCategory(user, "bread")
	if resp.Text != msgCategoryNotFound {
		t.Fatalf("unexpected response: %s", resp.Text)
	}
	if st := f.Sessions().State(user); st != StateChoosingCategory {
		t.Fatalf("category miss should keep the state, got %s", st)
	}

	f.PickCategory(user, "cake")
	resp = f.PickItem(user, "cake_999")
	if resp.Text != msgItemNotFound {
		t.Fatalf("unexpected response: %s", resp.Text)
	}
	if st := f.Sessions().State(user); st != StateChoosingItem {
		t.Fatalf("item miss should keep the state, got %s", st)
	}

	f.Browse(user, catalog.KindCourse)
	resp = f.PickItem(user, "course_Unknown")
	if resp.Text != msgCourseNotFound {
		t.Fatalf("unexpected response: %s", resp.Text)
	}
	if st := f.Sessions().State(user); st != StateIdle {
		t.Fatalf("course miss should reset to idle, got %s", st)
	}
}

func TestAdjustWithoutSelectionRecovers(t *testing.T) {
	env := newTestEnv(t, productsDoc, coursesDoc)
	f := env.flow

	resp := f.Adjust(11, ActionIncrease)
	if resp.Text != msgSelectionMissing {
		t.Fatalf("unexpected response: %s", resp.Text)
	}
	if st := f.Sessions().State(11); st != StateIdle {
		t.Fatalf("state = %s, expected idle", st)
	}
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t, productsDoc, coursesDoc)
	f := env.flow
	const user = int64(6)

	f.Browse(user, catalog.KindProduct)
	f.PickCategory(user, "cake")
	f.PickItem(user, "cake_2")
	f.Adjust(user, ActionConfirm)
	if f.Sessions().Get(user).Cart.IsEmpty() {
		t.Fatal("cart should have a line")
	}

	resp := f.ClearCart(user)
	if resp.Text != msgCartCleared {
		t.Fatalf("unexpected response: %s", resp.Text)
	}
	if !f.Sessions().Get(user).Cart.IsEmpty() {
		t.Fatal("cart should be empty after clear")
	}
}

func TestCourseMediaResolution(t *testing.T) {
	env := newTestEnv(t, productsDoc, coursesDoc)
	f := env.flow
	const user = int64(8)

	// Image reference present but the asset is missing: degrade to a note.
	f.Browse(user, catalog.KindCourse)
	resp := f.PickItem(user, "course_Baking 101")
	if resp.Media != "" {
		t.Fatalf("media should not resolve: %s", resp.Media)
	}
	if !strings.Contains(resp.Text, noteImageMissing) {
		t.Fatalf("expected missing-image note, got: %s", resp.Text)
	}

	// With the asset in place the response carries the resolved path.
	asset := filepath.Join(env.mediaDir, "baking101.jpg")
	if err := os.WriteFile(asset, []byte("jpg"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	f.Browse(user, catalog.KindCourse)
	resp = f.PickItem(user, "course_Baking 101")
	if resp.Media != asset {
		t.Fatalf("media = %q, expected %q", resp.Media, asset)
	}
	if strings.Contains(resp.Text, noteImageMissing) {
		t.Fatalf("unexpected note with resolved media: %s", resp.Text)
	}
}

func TestUnpaidListing(t *testing.T) {
	env := newTestEnv(t, productsDoc, coursesDoc)
	f := env.flow
	const user = int64(9)

	resp, err := f.Unpaid(user)
	if err != nil {
		t.Fatalf("unpaid: %v", err)
	}
	if resp.Text != msgNoUnpaid {
		t.Fatalf("unexpected response: %s", resp.Text)
	}

	f.Browse(user, catalog.KindProduct)
	f.PickCategory(user, "cake")
	f.PickItem(user, "cake_1")
	f.Adjust(user, ActionConfirm)
	if _, err := f.ConfirmOrder(user); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	resp, err = f.Unpaid(user)
	if err != nil {
		t.Fatalf("unpaid: %v", err)
	}
	if !strings.Contains(resp.Text, "#1 Cake — 300") {
		t.Fatalf("unexpected unpaid listing: %s", resp.Text)
	}
}
