package handler

import (
	"fmt"

	"relaybot/internal/domain"
	"relaybot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleCallback handles callback queries that are not bound to a static
// button, in particular the per-user accept/reject/end/ban actions whose
// payload carries the user ID.
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	data := cleanCallbackData(callback.Data)
	h.logger.Info("Processing callback",
		zap.String("unique", callback.Unique),
		zap.String("data", data),
		zap.Int64("user_id", c.Sender().ID),
	)

	switch callback.Unique {
	case "relay_apply":
		return h.handleApplyCallback(c)
	case "relay_cancel":
		return h.handleCancelCallback(c)
	case "relay_end":
		return h.handleEndChatCallback(c)
	case "op_pending":
		return h.handleViewPending(c)
	case "op_active":
		return h.handleViewActive(c)
	case "op_help":
		return h.handleHelp(c)
	case "op_accept", "op_reject", "op_end", "op_ban":
		return h.handleOperatorAction(c, callback.Unique, data)
	}

	h.logger.Warn("Unhandled callback",
		zap.String("unique", callback.Unique),
		zap.String("data", data),
	)
	return c.Respond()
}

// handleApplyCallback handles a user's connection request button.
func (h *Handler) handleApplyCallback(c tele.Context) error {
	sender := c.Sender()

	result, err := h.relay.Apply(sender.ID, sender.Username)
	if err != nil {
		h.logger.Error("Apply failed", zap.Int64("user_id", sender.ID), zap.Error(err))
		return h.editOrSend(c, "Something went wrong. Please try again later.", nil)
	}

	switch result {
	case service.ApplyBanned:
		return h.editOrSend(c, "You are banned and cannot request a chat.", nil)
	case service.ApplyAlreadyActive:
		return h.editOrSend(c, "You are already connected. Use the button to end the chat.", userMenu(domain.StateActive))
	case service.ApplyAlreadyPending:
		return h.editOrSend(c, "Your request is already waiting for an operator.", userMenu(domain.StatePending))
	}
	return h.editOrSend(c, "✅ Request sent. Please wait for an operator to accept it.", userMenu(domain.StatePending))
}

// handleCancelCallback handles a user's cancel-request button.
func (h *Handler) handleCancelCallback(c tele.Context) error {
	userID := c.Sender().ID

	if !h.relay.Cancel(userID) {
		return h.editOrSend(c, "You have no pending request.", userMenu(h.relay.StateOf(userID)))
	}
	return h.editOrSend(c, "Request cancelled.", userMenu(domain.StateNone))
}

// handleEndChatCallback handles a user's end-chat button.
func (h *Handler) handleEndChatCallback(c tele.Context) error {
	userID := c.Sender().ID

	if !h.relay.EndByUser(userID) {
		return h.editOrSend(c, "You have no active chat.", userMenu(h.relay.StateOf(userID)))
	}
	return h.editOrSend(c, "Chat ended.", userMenu(domain.StateNone))
}

// handleViewPending pushes one actionable message per pending request to
// the invoking operator.
func (h *Handler) handleViewPending(c tele.Context) error {
	if !h.isOperator(c) {
		return c.Respond(&tele.CallbackResponse{Text: "Operators only."})
	}

	_, pending := h.relay.Sessions()
	if len(pending) == 0 {
		return h.editOrSend(c, "No pending requests.", operatorPanel())
	}

	if err := h.editOrSend(c, "Pending requests:", operatorPanel()); err != nil {
		return err
	}
	for _, userID := range pending {
		if err := c.Send(fmt.Sprintf("📌 Request from user %d", userID), pendingItemMarkup(userID)); err != nil {
			h.logger.Warn("Failed to send pending item", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// handleViewActive pushes one actionable message per active session to
// the invoking operator.
func (h *Handler) handleViewActive(c tele.Context) error {
	if !h.isOperator(c) {
		return c.Respond(&tele.CallbackResponse{Text: "Operators only."})
	}

	active, _ := h.relay.Sessions()
	if len(active) == 0 {
		return h.editOrSend(c, "No active sessions.", operatorPanel())
	}

	if err := h.editOrSend(c, "Active sessions:", operatorPanel()); err != nil {
		return err
	}
	for _, userID := range active {
		if err := c.Send(fmt.Sprintf("🟢 Active user %d", userID), activeItemMarkup(userID)); err != nil {
			h.logger.Warn("Failed to send active item", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// handleOperatorAction handles the per-user action buttons. A stale button
// press (the request was already handled by another operator) is reported
// back, never silently dropped.
func (h *Handler) handleOperatorAction(c tele.Context, action, data string) error {
	if !h.isOperator(c) {
		return c.Respond(&tele.CallbackResponse{Text: "Operators only."})
	}

	userID, err := parseUserID(data)
	if err != nil {
		return h.editOrSend(c, "Malformed user ID in button data.", nil)
	}

	switch action {
	case "op_accept":
		if !h.relay.Accept(userID) {
			return h.editOrSend(c, fmt.Sprintf("User %d is no longer pending; the request was already handled.", userID), nil)
		}
		return h.editOrSend(c, fmt.Sprintf("✅ Accepted user %d. Their messages will be relayed here.", userID), nil)

	case "op_reject":
		if !h.relay.Reject(userID) {
			return h.editOrSend(c, fmt.Sprintf("User %d is no longer pending; the request was already handled.", userID), nil)
		}
		return h.editOrSend(c, fmt.Sprintf("❌ Rejected user %d.", userID), nil)

	case "op_end":
		if !h.relay.EndSession(userID) {
			return h.editOrSend(c, fmt.Sprintf("User %d has no active session.", userID), nil)
		}
		return h.editOrSend(c, fmt.Sprintf("🔚 Ended the session with user %d.", userID), nil)

	case "op_ban":
		if err := h.relay.Ban(userID); err != nil {
			h.logger.Error("Ban failed", zap.Int64("user_id", userID), zap.Error(err))
			return h.editOrSend(c, "Could not ban the user: storage error.", nil)
		}
		return h.editOrSend(c, fmt.Sprintf("🚫 Banned user %d.", userID), nil)
	}
	return c.Respond()
}
