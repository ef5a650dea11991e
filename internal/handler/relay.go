package handler

import (
	"fmt"
	"strings"

	"relaybot/internal/domain"
	"relaybot/internal/service"
	"relaybot/internal/transport"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleMessage routes every non-command message. Operator messages are
// treated as replies to relayed user messages; user messages are relayed
// to an operator when a session is active.
func (h *Handler) handleMessage(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	if strings.HasPrefix(c.Text(), "/") {
		return nil
	}

	if h.isOperator(c) {
		return h.handleOperatorMessage(c, msg)
	}
	return h.handleUserMessage(c, msg)
}

// handleOperatorMessage correlates an operator's reply with the user who
// originated the replied-to relayed message and delivers a copy to them.
func (h *Handler) handleOperatorMessage(c tele.Context, msg *tele.Message) error {
	if msg.ReplyTo == nil {
		return c.Send("Reply directly to a relayed message to answer that user, or use /send <user_id> <text>.")
	}

	src := transport.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID}
	userID, ok, err := h.relay.RelayReply(msg.ReplyTo.ID, src)
	if !ok {
		return c.Send("That message cannot be matched to a user. Reply to a relayed message, or use /send <user_id> <text>.")
	}
	if err != nil {
		return c.Send(fmt.Sprintf("Delivery to user %d failed: %v", userID, err))
	}
	return c.Send(fmt.Sprintf("Delivered to user %d.", userID))
}

// handleUserMessage relays an active user's message to an operator, or
// tells the user where they stand otherwise.
func (h *Handler) handleUserMessage(c tele.Context, msg *tele.Message) error {
	userID := c.Sender().ID
	src := transport.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID}

	result, err := h.relay.RelayFromUser(userID, src)
	if err != nil {
		h.logger.Error("Relay failed", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("Something went wrong. Please try again later.")
	}

	switch result {
	case service.RelayDelivered:
		return nil
	case service.RelayBanned:
		return c.Send("You are banned and cannot use this service.")
	case service.RelayPending:
		return c.Send("⏳ Your request is still waiting for an operator. Please be patient or cancel it.",
			userMenu(domain.StatePending))
	case service.RelayNoSession:
		return c.Send("You are not connected to an operator yet. Request a chat first:",
			userMenu(domain.StateNone))
	default:
		return c.Send("Delivery failed: no operator is reachable right now. Please try again later.")
	}
}
