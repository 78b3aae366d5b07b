package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bakerybot/modules/orders"
	"log/slog"
)

// ViewCart renders the cart contents and total with confirm/clear options.
// An empty cart short-circuits with a notice and no actions.
func (f *Flow) ViewCart(userID int64) Response {
	sess := f.sessions.Get(userID)
	if sess.Cart.IsEmpty() {
		return Response{Text: msgCartEmpty}
	}

	var b strings.Builder
	b.WriteString("Your cart:\n")
	for _, line := range sess.Cart.Lines() {
		fmt.Fprintf(&b, " - %s: %s (%d) — %d\n",
			line.Kind.Label(), line.Item, line.Quantity, line.Subtotal())
	}
	fmt.Fprintf(&b, "Total — %d", sess.Cart.Total())

	sess.State = StateViewingCart
	return Response{
		Text: b.String(),
		Buttons: []Button{
			{Label: "Place order", Token: ActionConfirmOrder},
			{Label: "Clear cart", Token: ActionClearCart},
		},
		PerRow: 1,
	}
}

// ConfirmOrder commits every cart line to the order store in a single
// ledger write, then clears the cart. An empty cart touches nothing. The
// error return carries ledger failures for the caller to surface; the
// Response is always sendable.
func (f *Flow) ConfirmOrder(userID int64) (Response, error) {
	sess := f.sessions.Get(userID)
	if sess.Cart.IsEmpty() {
		return Response{Text: msgCartEmpty}, nil
	}

	cartLines := sess.Cart.Lines()
	lines := make([]orders.Line, 0, len(cartLines))
	for _, l := range cartLines {
		lines = append(lines, orders.Line{
			Item:  l.Item,
			Kind:  l.Kind,
			Price: l.Subtotal(),
		})
	}

	added, err := f.orders.AddOrders(strconv.FormatInt(userID, 10), lines)
	if err != nil {
		return Response{Text: msgOrderFailed}, err
	}

	sess.Cart.Clear()
	sess.reset()

	f.log.LogAttrs(context.Background(), slog.LevelInfo, "",
		slog.String("event", "flow.order_placed"),
		slog.Int64("user_id", userID),
		slog.Int("lines", len(added)),
	)
	return Response{Text: msgOrderPlaced, MainMenu: true}, nil
}

// ClearCart unconditionally empties the cart, no confirmation step.
func (f *Flow) ClearCart(userID int64) Response {
	sess := f.sessions.Get(userID)
	sess.Cart.Clear()
	sess.reset()
	return Response{Text: msgCartCleared, MainMenu: true}
}

// Unpaid lists the user's unpaid orders.
func (f *Flow) Unpaid(userID int64) (Response, error) {
	unpaid, err := f.orders.ListUnpaid(strconv.FormatInt(userID, 10))
	if err != nil {
		return Response{Text: msgOrderFailed}, err
	}
	if len(unpaid) == 0 {
		return Response{Text: msgNoUnpaid}, nil
	}

	var b strings.Builder
	b.WriteString("Unpaid orders:\n")
	for _, o := range unpaid {
		fmt.Fprintf(&b, " - #%d %s — %d (%s)\n", o.OrderID, o.Item, o.Price, o.Date)
	}
	return Response{Text: b.String()}, nil
}
