package handler

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"trade_pilot/internal/transport/bot/view"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.Status(h.session.Status()))
}

func (h *Handler) OnPause(ctx *th.Context, msg telego.Message) error {
	if !h.session.Status().Running {
		return h.send(ctx, msg.Chat.ID, view.NotRunning)
	}

	h.session.Pause()

	return h.send(ctx, msg.Chat.ID, view.Paused)
}

func (h *Handler) OnResume(ctx *th.Context, msg telego.Message) error {
	if !h.session.Status().Running {
		return h.send(ctx, msg.Chat.ID, view.NotRunning)
	}

	h.session.Resume()

	return h.send(ctx, msg.Chat.ID, view.Resumed)
}

func (h *Handler) OnSkip(ctx *th.Context, msg telego.Message) error {
	status := h.session.Status()
	if !status.Running {
		return h.send(ctx, msg.Chat.ID, view.NotRunning)
	}
	if status.CurrentItem == "" {
		return h.send(ctx, msg.Chat.ID, view.NothingToSkip)
	}

	h.session.SkipCurrentItem()

	return h.send(ctx, msg.Chat.ID, view.Skipped)
}

func (h *Handler) OnStop(ctx *th.Context, msg telego.Message) error {
	if !h.session.Status().Running {
		return h.send(ctx, msg.Chat.ID, view.NotRunning)
	}

	h.session.RequestStop()

	return h.send(ctx, msg.Chat.ID, view.Stopping)
}

func (h *Handler) OnLog(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.Log(h.session.Journal(), logTail))
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})
	return err
}

func (h *Handler) send(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	return err
}
