package middleware

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// AdminOnly drops every update that does not come from adminID.
func AdminOnly(adminID int64) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		var from *telego.User

		switch {
		case update.Message != nil:
			from = update.Message.From
		case update.CallbackQuery != nil:
			from = &update.CallbackQuery.From
		}

		if from == nil || from.ID != adminID {
			return nil
		}

		return ctx.Next(update)
	}
}
