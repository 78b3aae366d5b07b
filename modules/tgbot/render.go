package tgbot

import (
	"context"

	"bakerybot/core/telegram/keyboard"
	"bakerybot/modules/flow"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// respond renders a flow response: photo with caption when media is
// attached, in-place edit for quantity re-renders, plain message otherwise.
// A failed photo upload degrades to a text-only message with a note.
func (b *Bot) respond(c tele.Context, r flow.Response) error {
	if r.Text == "" {
		return nil
	}

	var markup *tele.ReplyMarkup
	switch {
	case len(r.Buttons) > 0:
		markup = inlineMarkup(r.Buttons, r.PerRow)
	case r.MainMenu:
		markup = mainMenu()
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup}

	if r.Media != "" {
		photo := &tele.Photo{File: tele.FromDisk(r.Media), Caption: r.Text}
		if err := c.Send(photo, opts); err != nil {
			b.log.LogAttrs(context.Background(), slog.LevelWarn, "",
				slog.String("event", "bot.media_send_failed"),
				slog.String("media", r.Media),
				slog.String("err", err.Error()),
			)
			return c.Send(r.Text+noteUploadFailed, opts)
		}
		return nil
	}

	if r.Edit {
		if msg := c.Message(); msg != nil && msg.Photo != nil {
			return c.EditCaption(r.Text, opts)
		}
		return c.EditOrSend(r.Text, opts)
	}
	return c.Send(r.Text, opts)
}

func inlineMarkup(buttons []flow.Button, perRow int) *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, len(buttons))
	for _, btn := range buttons {
		btns = append(btns, keyboard.InlineBtn{Text: btn.Label, Unique: btn.Token})
	}
	return keyboard.InlineButtonsNPerRow(btns, perRow)
}

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnProducts},
		[]string{btnCourses},
		[]string{btnCart},
	)
}
