package handler

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

// Messenger is the part of the Telegram API the handler needs. *tele.Bot implements it.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	StopPoll(msg tele.Editable, opts ...interface{}) (*tele.Poll, error)
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

var _ Messenger = (*tele.Bot)(nil)

// storedMessage addresses a message sent earlier by id.
func storedMessage(chatID int64, messageID int) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
}

// nameBook caches display names of the users seen in updates.
type nameBook struct {
	names sync.Map // map[int64]string
}

func displayName(u *tele.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return fmt.Sprintf("User%d", u.ID)
}

func (b *nameBook) remember(u *tele.User) {
	if u == nil {
		return
	}
	b.names.Store(u.ID, displayName(u))
}

// lookup returns the cached name, asking the chat for unknown users.
func (b *nameBook) lookup(m Messenger, chatID, userID int64) string {
	if v, ok := b.names.Load(userID); ok {
		return v.(string)
	}
	member, err := m.ChatMemberOf(&tele.Chat{ID: chatID}, &tele.User{ID: userID})
	if err != nil || member == nil || member.User == nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Int64("user_id", userID).Msg("Could not resolve user name")
		return fmt.Sprintf("User%d", userID)
	}
	name := displayName(member.User)
	b.names.Store(userID, name)
	return name
}

func (b *nameBook) list(m Messenger, chatID int64, userIDs []int64) []string {
	out := make([]string, len(userIDs))
	for i, id := range userIDs {
		out[i] = b.lookup(m, chatID, id)
	}
	return out
}
