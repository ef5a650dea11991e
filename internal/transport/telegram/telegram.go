package telegram

import (
	"strconv"
	"strings"

	"relaybot/internal/domain"
	"relaybot/internal/transport"

	tele "gopkg.in/telebot.v3"
)

// Courier implements transport.Courier over a Telegram bot
type Courier struct {
	bot *tele.Bot
}

// NewCourier creates a Telegram-backed courier
func NewCourier(bot *tele.Bot) *Courier {
	return &Courier{bot: bot}
}

// Send delivers a text message and returns its message ID.
func (c *Courier) Send(to domain.Address, text string, opts ...interface{}) (int, error) {
	msg, err := c.bot.Send(recipient(to), text, opts...)
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// Copy delivers a verbatim copy of an existing message and returns the ID
// of the copy in the destination chat.
func (c *Courier) Copy(to domain.Address, src transport.MessageRef) (int, error) {
	stored := tele.StoredMessage{
		MessageID: strconv.Itoa(src.MessageID),
		ChatID:    src.ChatID,
	}
	msg, err := c.bot.Copy(recipient(to), stored)
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// Resolve looks up the numeric chat ID behind a handle. Fails if the
// handle's owner has never talked to the bot.
func (c *Courier) Resolve(handle string) (int64, error) {
	chat, err := c.bot.ChatByUsername("@" + strings.TrimPrefix(handle, "@"))
	if err != nil {
		return 0, err
	}
	return chat.ID, nil
}

// handleRecipient lets a bare @username act as a telebot recipient.
type handleRecipient string

func (h handleRecipient) Recipient() string { return string(h) }

func recipient(a domain.Address) tele.Recipient {
	if a.IsNumeric() {
		return tele.ChatID(a.ID)
	}
	return handleRecipient("@" + strings.TrimPrefix(a.Handle, "@"))
}
