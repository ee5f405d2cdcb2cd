package app

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type sentMessage struct {
	chatID int64
	text   string
}

// fakeTelegramClient records messages and fails for chats listed in failFor.
type fakeTelegramClient struct {
	mu      sync.Mutex
	failFor map[int64]bool
	sent    []sentMessage
}

func (c *fakeTelegramClient) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failFor[chatID] {
		return errors.New("telegram: bot was blocked by the user")
	}
	c.sent = append(c.sent, sentMessage{chatID: chatID, text: text})
	return nil
}
