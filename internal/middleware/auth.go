package middleware

import (
	"relaybot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// OperatorOnly restricts a handler to callers the operator directory
// recognizes, either by configured handle or by known numeric ID.
func OperatorOnly(dir *service.OperatorDirectory, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			if !dir.IsOperator(sender.ID, sender.Username) {
				logger.Warn("Unauthorized operator command",
					zap.Int64("user_id", sender.ID),
					zap.String("username", sender.Username),
					zap.String("text", c.Text()),
				)
				return c.Send("This command is restricted to operators.")
			}

			return next(c)
		}
	}
}
