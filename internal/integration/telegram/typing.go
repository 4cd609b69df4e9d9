package telegram

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Telegram typing action expires after 5 seconds
const typingInterval = 4 * time.Second

type ChatActionSender interface {
	SendTyping(chatID int64) error
}

// TypingNotifier sends periodic "typing" actions while an answer is prepared
type TypingNotifier struct {
	sender   ChatActionSender
	chatID   int64
	interval time.Duration
	done     chan struct{}
	once     sync.Once
	logger   *zap.Logger
}

func NewTypingNotifier(sender ChatActionSender, chatID int64, logger *zap.Logger) *TypingNotifier {
	return &TypingNotifier{
		sender:   sender,
		chatID:   chatID,
		interval: typingInterval,
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Start sends the first action immediately and then one per interval until Stop or ctx is done
func (t *TypingNotifier) Start(ctx context.Context) {
	t.send("failed to send initial typing action")

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.send("failed to send typing action")
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop is safe to call more than once
func (t *TypingNotifier) Stop() {
	t.once.Do(func() { close(t.done) })
}

func (t *TypingNotifier) send(msg string) {
	if err := t.sender.SendTyping(t.chatID); err != nil {
		t.logger.Warn(msg,
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}
