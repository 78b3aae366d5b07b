// Package flow drives the selection and checkout conversation: category →
// item → quantity → cart → order. Operations take a user id and an inbound
// token and return a transport-neutral Response; the Telegram adapter owns
// the rendering.
package flow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bakerybot/core/logger"
	"bakerybot/modules/catalog"
	"bakerybot/modules/orders"
	"log/slog"
)

// MaxQuantity bounds the quantity of a single cart line.
const MaxQuantity = 5

// Quantity-adjust and checkout callback tokens.
const (
	ActionDecrease = "decrease"
	ActionIncrease = "increase"
	ActionConfirm  = "confirm"

	ActionConfirmOrder = "confirm_order"
	ActionClearCart    = "clear_cart"
)

const courseTokenPrefix = "course_"

const (
	msgChooseCategory   = "Choose a category:"
	msgChooseItem       = "What would you like to order?"
	msgChooseCourse     = "Choose a course:"
	msgNoProducts       = "No products are available right now."
	msgNoCourses        = "No courses are available right now."
	msgCategoryNotFound = "Category not found"
	msgItemNotFound     = "Item not found"
	msgCourseNotFound   = "Course not found"
	msgSelectionMissing = "Selection data is missing. Please restart your selection."
	msgCartEmpty        = "Your cart is empty"
	msgCartCleared      = "Your cart has been cleared"
	msgOrderPlaced      = "Your order has been placed"
	msgOrderFailed      = "Could not place your order, please try again later."
	msgNoUnpaid         = "You have no unpaid orders."

	noteImageMissing = "\n\n(image not found)"
)

// Flow wires the catalog, the order store, and the session store into the
// conversation state machine.
type Flow struct {
	catalog  *catalog.Store
	orders   *orders.Store
	sessions *Sessions
	mediaDir string
	log      *slog.Logger
}

// New creates the conversation flow over the given stores. mediaDir is the
// base directory image references resolve against.
func New(cat *catalog.Store, ord *orders.Store, mediaDir string) *Flow {
	return &Flow{
		catalog:  cat,
		orders:   ord,
		sessions: NewSessions(),
		mediaDir: mediaDir,
		log:      logger.Component("flow"),
	}
}

// Sessions exposes the session store to the transport adapter for
// state-based callback routing.
func (f *Flow) Sessions() *Sessions {
	return f.sessions
}

// Browse starts a selection flow for the given kind. Products open with the
// category listing; courses open with the flat course list. An empty listing
// returns the flow to idle with a notice instead of an empty keyboard.
func (f *Flow) Browse(userID int64, kind catalog.Kind) Response {
	sess := f.sessions.Get(userID)
	sess.reset()

	if kind == catalog.KindCourse {
		courses := f.catalog.LoadCourses()
		if len(courses) == 0 {
			return Response{Text: msgNoCourses, MainMenu: true}
		}
		buttons := make([]Button, 0, len(courses))
		for _, course := range courses {
			buttons = append(buttons, Button{Label: course.Name, Token: course.Token})
		}
		sess.Pending = &Pending{Kind: catalog.KindCourse}
		sess.State = StateChoosingItem
		return Response{Text: msgChooseCourse, Buttons: buttons, PerRow: 1}
	}

	groups := f.catalog.LoadProducts()
	if len(groups) == 0 {
		return Response{Text: msgNoProducts, MainMenu: true}
	}
	buttons := make([]Button, 0, len(groups))
	for _, group := range groups {
		buttons = append(buttons, Button{Label: group.Name, Token: group.Category})
	}
	sess.Pending = &Pending{Kind: catalog.KindProduct}
	sess.State = StateChoosingCategory
	return Response{Text: msgChooseCategory, Buttons: buttons, PerRow: 1}
}

// PickCategory handles a category pick while choosing products. On a stale
// or unknown token the flow stays in place and reports the miss.
func (f *Flow) PickCategory(userID int64, token string) Response {
	sess := f.sessions.Get(userID)
	if sess.Pending == nil {
		sess.reset()
		return Response{Text: msgSelectionMissing, MainMenu: true}
	}

	var picked *catalog.CategoryGroup
	for _, group := range f.catalog.LoadProducts() {
		if group.Category == token {
			picked = &group
			break
		}
	}
	if picked == nil {
		f.log.LogAttrs(context.Background(), slog.LevelWarn, "",
			slog.String("event", "flow.category_miss"),
			slog.Int64("user_id", userID),
			slog.String("token", token),
		)
		return Response{Text: msgCategoryNotFound}
	}

	buttons := make([]Button, 0, len(picked.Items))
	for _, item := range picked.Items {
		buttons = append(buttons, Button{Label: item.Name, Token: item.Token})
	}
	sess.Pending.Category = token
	sess.State = StateChoosingItem
	return Response{Text: msgChooseItem, Buttons: buttons, PerRow: 2}
}

// PickItem handles an item or course pick, initializing the quantity to 1
// and rendering the entry description with the adjust keyboard.
func (f *Flow) PickItem(userID int64, token string) Response {
	sess := f.sessions.Get(userID)
	pending := sess.Pending
	if pending == nil {
		sess.reset()
		return Response{Text: msgSelectionMissing, MainMenu: true}
	}

	var (
		entry catalog.Entry
		found bool
	)
	if pending.Kind == catalog.KindCourse {
		name := strings.TrimPrefix(token, courseTokenPrefix)
		entry, found = f.catalog.FindCourse(name)
		if !found {
			sess.reset()
			return Response{Text: msgCourseNotFound, MainMenu: true}
		}
	} else {
		entry, found = f.findProductByToken(pending.Category, token)
		if !found {
			return Response{Text: msgItemNotFound}
		}
	}

	pending.Entry = entry
	pending.HasEntry = true
	pending.Quantity = 1
	sess.State = StateAdjustingQuantity

	resp := Response{
		Text:    describeSelection(pending),
		Buttons: adjustButtons(),
		PerRow:  2,
	}
	if entry.ImageRef != "" {
		path := filepath.Join(f.mediaDir, entry.ImageRef)
		if _, err := os.Stat(path); err == nil {
			resp.Media = path
		} else {
			resp.Text += noteImageMissing
		}
	}
	return resp
}

// Adjust handles decrease/increase/confirm while a quantity is being
// adjusted. Out-of-range steps are silent no-ops; confirm commits the line
// to the cart and returns the flow to idle.
func (f *Flow) Adjust(userID int64, action string) Response {
	sess := f.sessions.Get(userID)
	pending := sess.Pending
	if pending == nil || !pending.HasEntry {
		sess.reset()
		return Response{Text: msgSelectionMissing, MainMenu: true}
	}

	switch action {
	case ActionDecrease:
		if pending.Quantity <= 1 {
			return Response{}
		}
		pending.Quantity--
	case ActionIncrease:
		if pending.Quantity >= MaxQuantity {
			return Response{}
		}
		pending.Quantity++
	case ActionConfirm:
		return f.commitSelection(sess)
	default:
		return Response{}
	}

	return Response{
		Text:    describeSelection(pending),
		Buttons: adjustButtons(),
		PerRow:  2,
		Edit:    true,
	}
}

func (f *Flow) commitSelection(sess *Session) Response {
	pending := sess.Pending
	line := pending.toCartLine()
	sess.Cart.AddLine(line)
	sess.reset()

	f.log.LogAttrs(context.Background(), slog.LevelInfo, "",
		slog.String("event", "flow.line_added"),
		slog.String("item", line.Item),
		slog.String("kind", string(line.Kind)),
		slog.Int("quantity", line.Quantity),
	)

	noun := "pcs"
	if line.Kind == catalog.KindCourse {
		noun = "seats"
	}
	text := fmt.Sprintf("%s (%d %s) added to your cart. Anything else?", line.Item, line.Quantity, noun)
	return Response{Text: text, MainMenu: true}
}

func (f *Flow) findProductByToken(category, token string) (catalog.Entry, bool) {
	for _, group := range f.catalog.LoadProducts() {
		if group.Category != category {
			continue
		}
		for _, item := range group.Items {
			if item.Token == token {
				return item, true
			}
		}
		break
	}
	return catalog.Entry{}, false
}

func describeSelection(p *Pending) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", p.Entry.Name)
	if p.Entry.Description != "" {
		b.WriteString(p.Entry.Description)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "<b>Price:</b> %d\n\n", p.Entry.Price)
	fmt.Fprintf(&b, "You picked '%s'. Quantity: %d\n", p.Entry.Name, p.Quantity)
	fmt.Fprintf(&b, "Adjust the quantity or confirm your choice (at most %d).", MaxQuantity)
	return b.String()
}

func adjustButtons() []Button {
	return []Button{
		{Label: "Decrease (-1)", Token: ActionDecrease},
		{Label: "Increase (+1)", Token: ActionIncrease},
		{Label: "Confirm", Token: ActionConfirm},
	}
}
