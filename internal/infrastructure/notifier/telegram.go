package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"trade_pilot/internal/domain/entity"
	"trade_pilot/pkg/httpx"
	"trade_pilot/pkg/logx"
)

const logFieldMaxLen = 4096

type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	client := &http.Client{
		Transport: httpx.NewLoggingRoundTripper(
			http.DefaultTransport,
			httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
			httpx.WithLogFieldMaxLen(logFieldMaxLen),
			httpx.WithLevel(slog.LevelDebug),
		),
	}

	bot, err := telego.NewBot(token, telego.WithHTTPClient(client), telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Run forwards notable events to the chat until the stream closes.
func (b *TelegramBot) Run(ctx context.Context, events <-chan entity.Event) error {
	return drain(ctx, events, "telegram notify", func(ctx context.Context, e entity.Event) error {
		text, ok := FormatEvent(e)
		if !ok {
			return nil
		}
		return b.SendHTML(ctx, text)
	})
}

func (b *TelegramBot) SendHTML(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// SendText sends a plain message.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}

// FormatEvent renders the chat message for an event. Retries and per-item
// progress are too chatty for a phone and are skipped.
func FormatEvent(e entity.Event) (string, bool) {
	msg := html.EscapeString(e.Message)

	switch e.Kind {
	case entity.EventSessionStarted:
		return "🚀 <b>Session started</b>\n" + msg, true
	case entity.EventPurchase:
		return fmt.Sprintf("🛒 <b>%s</b>: %d × %d\n💰 spent %d",
			html.EscapeString(e.Item), e.Quantity, e.UnitPrice, e.Spent), true
	case entity.EventSale:
		return fmt.Sprintf("💸 <b>%s</b>: %d × %d\n📈 income %d",
			html.EscapeString(e.Item), e.Quantity, e.UnitPrice, e.Income), true
	case entity.EventItemAbandoned:
		return "⚠️ " + msg, true
	case entity.EventPaused:
		return "⏸ " + msg, true
	case entity.EventResumed:
		return "▶️ " + msg, true
	case entity.EventHalted:
		return "🛑 <b>Halted</b>\n" + msg, true
	case entity.EventSessionFinished:
		return "🏁 <b>Session finished</b>\n" + msg, true
	default:
		return "", false
	}
}
