package handler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"relaybot/internal/domain"
	"relaybot/internal/middleware"
	"relaybot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler manages all bot interactions
type Handler struct {
	bot    *tele.Bot
	relay  *service.RelayService
	dir    *service.OperatorDirectory
	logger *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	relay *service.RelayService,
	dir *service.OperatorDirectory,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:    bot,
		relay:  relay,
		dir:    dir,
		logger: logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	operatorOnly := middleware.OperatorOnly(h.dir, h.logger)

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/help", h.handleHelp)
	h.bot.Handle("/register", h.handleRegister)

	// Operator commands
	h.bot.Handle("/connect", h.handleConnect, operatorOnly)
	h.bot.Handle("/end", h.handleEnd, operatorOnly)
	h.bot.Handle("/ban", h.handleBan, operatorOnly)
	h.bot.Handle("/unban", h.handleUnban, operatorOnly)
	h.bot.Handle("/list", h.handleList, operatorOnly)
	h.bot.Handle("/send", h.handleSend, operatorOnly)
	h.bot.Handle("/broadcast", h.handleBroadcast, operatorOnly)

	// Relayed content
	h.bot.Handle(tele.OnText, h.handleMessage)
	h.bot.Handle(tele.OnMedia, h.handleMessage)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnApply, h.handleApplyCallback)
	h.bot.Handle(&btnCancelRequest, h.handleCancelCallback)
	h.bot.Handle(&btnEndChat, h.handleEndChatCallback)
	h.bot.Handle(&btnViewPending, h.handleViewPending)
	h.bot.Handle(&btnViewActive, h.handleViewActive)
	h.bot.Handle(&btnOperatorHelp, h.handleHelp)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// Inline keyboard buttons
var (
	btnApply = tele.Btn{
		Unique: "relay_apply",
		Text:   "📨 Request a chat with an operator",
	}
	btnCancelRequest = tele.Btn{
		Unique: "relay_cancel",
		Text:   "⏳ Cancel request",
	}
	btnEndChat = tele.Btn{
		Unique: "relay_end",
		Text:   "🔚 End chat",
	}
	btnViewPending = tele.Btn{
		Unique: "op_pending",
		Text:   "📥 Pending requests",
	}
	btnViewActive = tele.Btn{
		Unique: "op_active",
		Text:   "📋 Active sessions",
	}
	btnOperatorHelp = tele.Btn{
		Unique: "op_help",
		Text:   "🔧 Help",
	}
)

// userMenu returns the keyboard matching the user's session state.
func userMenu(state domain.SessionState) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	switch state {
	case domain.StateActive:
		menu.Inline(menu.Row(btnEndChat))
	case domain.StatePending:
		menu.Inline(menu.Row(btnCancelRequest))
	default:
		menu.Inline(menu.Row(btnApply))
	}
	return menu
}

// operatorPanel returns the operator control keyboard.
func operatorPanel() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnViewPending, btnViewActive),
		menu.Row(btnOperatorHelp),
	)
	return menu
}

// pendingItemMarkup returns accept/reject buttons for one pending request.
func pendingItemMarkup(userID int64) *tele.ReplyMarkup {
	id := strconv.FormatInt(userID, 10)
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("✅ Accept", "op_accept", id),
		markup.Data("❌ Reject", "op_reject", id),
	))
	return markup
}

// activeItemMarkup returns end/ban buttons for one active session.
func activeItemMarkup(userID int64) *tele.ReplyMarkup {
	id := strconv.FormatInt(userID, 10)
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("🔚 End session", "op_end", id),
		markup.Data("🚫 Ban", "op_ban", id),
	))
	return markup
}

// isOperator reports whether the update's sender is an operator.
func (h *Handler) isOperator(c tele.Context) bool {
	sender := c.Sender()
	if sender == nil {
		return false
	}
	return h.dir.IsOperator(sender.ID, sender.Username)
}

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// parseUserID parses a numeric user identity from a command argument.
func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("user_id must be a positive number")
	}
	return id, nil
}

// handleEditError handles errors from c.Edit() - if the message is not
// modified, just acknowledge the callback. Otherwise acknowledge and return
// the error so the caller can send a new message instead.
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// editOrSend edits the callback's message, falling back to a fresh send.
func (h *Handler) editOrSend(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() == nil {
		if markup != nil {
			return c.Send(text, markup)
		}
		return c.Send(text)
	}

	var err error
	if markup != nil {
		err = c.Edit(text, markup)
	} else {
		err = c.Edit(text)
	}
	if err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil
		}
		if markup != nil {
			return c.Send(text, markup)
		}
		return c.Send(text)
	}
	return c.Respond()
}
