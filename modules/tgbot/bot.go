// Package tgbot adapts the conversation flow to Telegram: it maps commands
// and callback tokens to flow operations and renders flow responses as
// messages with keyboards.
package tgbot

import (
	"context"

	"bakerybot/core/logger"
	"bakerybot/core/telegram"
	"bakerybot/core/telegram/callbacks"
	"bakerybot/core/telegram/commands"
	"bakerybot/core/telegram/middleware"
	"bakerybot/modules/catalog"
	"bakerybot/modules/flow"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Main-menu reply keyboard labels; they alias the matching commands.
const (
	btnProducts = "Products"
	btnCourses  = "Courses"
	btnCart     = "Cart"
)

const (
	msgGreeting = "Hi! I'm the SofiCo bakery bot.\n" +
		"Use /order to browse products\n" +
		"/courses to see the course list\n" +
		"/cart to view your cart"
	msgAbout         = "We are the SofiCo bakery. We bake cakes and teach others to bake."
	msgAdminOnly     = "This command is available to the operator only."
	msgUnknownText   = "I didn't get that. Use the menu below."
	msgCatalogReload = "Catalog reloaded"
	msgUnpaidFailed  = "Could not read your orders, please try again later."
	noteUploadFailed = "\n\n(could not upload the image)"
)

// Bot wires the flow into a command/callback registry and telebot routes.
type Bot struct {
	flow    *flow.Flow
	catalog *catalog.Store
	reg     *telegram.Registry
	adminID int64
	log     *slog.Logger
}

// New builds the bot wiring over the given flow and catalog.
func New(fl *flow.Flow, cat *catalog.Store, adminID int64) *Bot {
	b := &Bot{
		flow:    fl,
		catalog: cat,
		reg:     telegram.NewRegistry(),
		adminID: adminID,
		log:     logger.Component("bot"),
	}
	b.registerCommands()
	b.registerCallbacks()
	return b
}

// Registry exposes the command/callback registry for the bot runtime.
func (b *Bot) Registry() *telegram.Registry {
	return b.reg
}

// Routes returns the telebot endpoints this bot handles.
func (b *Bot) Routes() []telegram.Route {
	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	return []telegram.Route{
		{Endpoint: tele.OnText, Handler: wrap(b.handleText)},
		{Endpoint: tele.OnCallback, Handler: wrap(b.handleCallback)},
	}
}

func (b *Bot) registerCommands() {
	b.reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Greeting and main menu",
	})
	b.reg.RegisterCommand("/about", commands.Command{
		Handler:     b.handleAbout,
		Description: "About the bakery",
	})
	b.reg.RegisterCommand("/order", commands.Command{
		Handler:     b.handleOrder,
		Description: "Browse products",
		Aliases:     []string{btnProducts},
	})
	b.reg.RegisterCommand("/courses", commands.Command{
		Handler:     b.handleCourses,
		Description: "Browse courses",
		Aliases:     []string{btnCourses},
	})
	b.reg.RegisterCommand("/cart", commands.Command{
		Handler:     b.handleCart,
		Description: "View your cart",
		Aliases:     []string{btnCart},
	})
	b.reg.RegisterCommand("/unpaid", commands.Command{
		Handler:     b.handleUnpaid,
		Description: "List your unpaid orders",
	})
	b.reg.RegisterCommand("/reload", commands.Command{
		Handler:     b.handleReload,
		Description: "Reload the catalog from storage",
		AdminOnly:   true,
	})
}

func (b *Bot) registerCallbacks() {
	adjust := func(action string) tele.HandlerFunc {
		return func(c tele.Context) error {
			return b.respond(c, b.flow.Adjust(c.Sender().ID, action))
		}
	}
	_ = b.reg.RegisterCallback(flow.ActionDecrease, adjust(flow.ActionDecrease))
	_ = b.reg.RegisterCallback(flow.ActionIncrease, adjust(flow.ActionIncrease))
	_ = b.reg.RegisterCallback(flow.ActionConfirm, adjust(flow.ActionConfirm))

	_ = b.reg.RegisterCallback(flow.ActionConfirmOrder, b.handleConfirmOrder)
	_ = b.reg.RegisterCallback(flow.ActionClearCart, func(c tele.Context) error {
		return b.respond(c, b.flow.ClearCart(c.Sender().ID))
	})
}

// handleText routes plain text and slash commands through the registry; the
// main-menu labels resolve via command aliases.
func (b *Bot) handleText(c tele.Context) error {
	text := c.Text()
	if _, cmd, ok := b.reg.LookupCommand(text); ok && cmd.Handler != nil {
		if cmd.AdminOnly && c.Sender().ID != b.adminID {
			return c.Send(msgAdminOnly)
		}
		return cmd.Handler(c)
	}
	return c.Send(msgUnknownText, mainMenu())
}

// handleCallback dispatches fixed tokens through the registry and routes
// catalog picks (dynamic tokens) by the user's current flow state.
func (b *Bot) handleCallback(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	_ = c.Respond()

	key := callbacks.CallbackKey(c)
	if handler, ok := b.reg.GetCallback(key); ok && handler != nil {
		return handler(c)
	}

	userID := c.Sender().ID
	switch b.flow.Sessions().State(userID) {
	case flow.StateChoosingCategory:
		return b.respond(c, b.flow.PickCategory(userID, key))
	case flow.StateChoosingItem:
		return b.respond(c, b.flow.PickItem(userID, key))
	default:
		return b.reg.CallbackNotFound()(c)
	}
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(msgGreeting, mainMenu())
}

func (b *Bot) handleAbout(c tele.Context) error {
	return c.Send(msgAbout)
}

func (b *Bot) handleOrder(c tele.Context) error {
	return b.respond(c, b.flow.Browse(c.Sender().ID, catalog.KindProduct))
}

func (b *Bot) handleCourses(c tele.Context) error {
	return b.respond(c, b.flow.Browse(c.Sender().ID, catalog.KindCourse))
}

func (b *Bot) handleCart(c tele.Context) error {
	return b.respond(c, b.flow.ViewCart(c.Sender().ID))
}

func (b *Bot) handleConfirmOrder(c tele.Context) error {
	resp, err := b.flow.ConfirmOrder(c.Sender().ID)
	if err != nil {
		b.log.LogAttrs(context.Background(), slog.LevelError, "",
			slog.String("event", "bot.checkout_failed"),
			slog.Int64("user_id", c.Sender().ID),
			slog.String("err", err.Error()),
		)
	}
	return b.respond(c, resp)
}

func (b *Bot) handleUnpaid(c tele.Context) error {
	resp, err := b.flow.Unpaid(c.Sender().ID)
	if err != nil {
		b.log.LogAttrs(context.Background(), slog.LevelError, "",
			slog.String("event", "bot.unpaid_failed"),
			slog.Int64("user_id", c.Sender().ID),
			slog.String("err", err.Error()),
		)
		return c.Send(msgUnpaidFailed)
	}
	return b.respond(c, resp)
}

func (b *Bot) handleReload(c tele.Context) error {
	b.catalog.ReloadProducts()
	b.catalog.ReloadCourses()
	b.log.LogAttrs(context.Background(), slog.LevelInfo, "",
		slog.String("event", "bot.catalog_reloaded"),
		slog.Int64("user_id", c.Sender().ID),
	)
	return c.Send(msgCatalogReload)
}
