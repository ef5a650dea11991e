package handler

import (
	"fmt"
	"strings"

	"relaybot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleConnect handles /connect <user_id>
func (h *Handler) handleConnect(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /connect <user_id>")
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return c.Send(err.Error())
	}

	result, err := h.relay.Connect(userID)
	if err != nil {
		h.logger.Error("Connect failed", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("Could not connect the user: storage error.")
	}

	switch result {
	case service.ConnectBanned:
		return c.Send(fmt.Sprintf("User %d is banned and cannot be connected.", userID))
	case service.ConnectNotifyFailed:
		return c.Send(fmt.Sprintf("Session opened with user %d, but they could not be notified. They may never have talked to the bot.", userID))
	}
	return c.Send(fmt.Sprintf("✅ Session opened with user %d.", userID))
}

// handleEnd handles /end <user_id>
func (h *Handler) handleEnd(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /end <user_id>")
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return c.Send(err.Error())
	}

	if !h.relay.EndSession(userID) {
		return c.Send(fmt.Sprintf("User %d has no active session.", userID))
	}
	return c.Send(fmt.Sprintf("Ended the session with user %d.", userID))
}

// handleBan handles /ban <user_id>
func (h *Handler) handleBan(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /ban <user_id>")
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return c.Send(err.Error())
	}

	if err := h.relay.Ban(userID); err != nil {
		h.logger.Error("Ban failed", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("Could not ban the user: storage error.")
	}
	return c.Send(fmt.Sprintf("Banned user %d and closed any session they had.", userID))
}

// handleUnban handles /unban <user_id>
func (h *Handler) handleUnban(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /unban <user_id>")
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return c.Send(err.Error())
	}

	if err := h.relay.Unban(userID); err != nil {
		h.logger.Error("Unban failed", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send("Could not unban the user: storage error.")
	}
	return c.Send(fmt.Sprintf("Unbanned user %d.", userID))
}

// handleList handles /list
func (h *Handler) handleList(c tele.Context) error {
	active, pending := h.relay.Sessions()
	return c.Send(formatSessionList(active, pending))
}

func formatSessionList(active, pending []int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🟢 Active sessions (%d):\n%s\n\n", len(active), formatIDs(active))
	fmt.Fprintf(&b, "⏳ Pending requests (%d):\n%s", len(pending), formatIDs(pending))
	return b.String()
}

func formatIDs(ids []int64) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, "\n")
}

// handleSend handles /send <user_id> <text>
func (h *Handler) handleSend(c tele.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return c.Send("Usage: /send <user_id> <text>")
	}
	userID, err := parseUserID(args[0])
	if err != nil {
		return c.Send(err.Error())
	}

	text := strings.Join(args[1:], " ")
	if err := h.relay.Send(userID, text); err != nil {
		return c.Send(fmt.Sprintf("Delivery failed: %v", err))
	}
	return c.Send("Sent.")
}

// handleBroadcast handles /broadcast <text>
func (h *Handler) handleBroadcast(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return c.Send("Usage: /broadcast <text>")
	}

	sent, total := h.relay.Broadcast(strings.Join(args, " "))
	return c.Send(fmt.Sprintf("Broadcast delivered to %d of %d active users.", sent, total))
}
