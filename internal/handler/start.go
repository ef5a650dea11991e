package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	sender := c.Sender()

	h.logger.Info("User started bot",
		zap.Int64("user_id", sender.ID),
		zap.String("username", sender.Username),
	)

	if h.isOperator(c) {
		return h.editOrSend(c, "Welcome, operator.", operatorPanel())
	}

	banned, err := h.relay.IsBanned(sender.ID)
	if err != nil {
		h.logger.Error("Failed to check ban list", zap.Error(err))
		return c.Send("Something went wrong. Please try again later.")
	}
	if banned {
		return c.Send("You are banned and cannot use this service.")
	}

	state := h.relay.StateOf(sender.ID)
	return h.editOrSend(c,
		"Welcome. Use the button below to request a private chat with an operator.",
		userMenu(state),
	)
}

// handleHelp handles /help and the operator panel help button
func (h *Handler) handleHelp(c tele.Context) error {
	if h.isOperator(c) {
		return h.editOrSend(c,
			"/start - operator panel\n"+
				"/connect <user_id> - open a session with a user\n"+
				"/end <user_id> - end a user's session\n"+
				"/ban <user_id> - ban a user\n"+
				"/unban <user_id> - unban a user\n"+
				"/list - list active sessions and pending requests\n"+
				"/send <user_id> <text> - message a user directly\n"+
				"/broadcast <text> - message all active users\n"+
				"/register - register your numeric ID (if handle resolution failed)\n\n"+
				"Reply to a relayed message to answer that user.",
			nil,
		)
	}
	return c.Send("Use /start and press the button to request a chat with an operator.")
}

// handleRegister lets an operator whose handle could not be resolved at
// startup record their numeric ID by messaging the bot directly.
func (h *Handler) handleRegister(c tele.Context) error {
	sender := c.Sender()

	if !h.dir.Register(sender.ID, sender.Username) {
		return c.Send("Registration is only available to configured operator handles.")
	}

	h.logger.Info("Operator self-registered",
		zap.Int64("operator_id", sender.ID),
		zap.String("username", sender.Username),
	)
	return c.Send("Registered your operator ID.")
}
