package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var _ Messenger = (*TelegramGateway)(nil)

// botClient is the part of *tgbotapi.BotAPI the gateway uses.
type botClient interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// TelegramGateway pushes text messages from one chat into the transcript
// and mirrors announcements to that chat. With no configured chat ID the
// first chat that writes is adopted.
type TelegramGateway struct {
	Bot   botClient
	Inbox Inbox

	mu     sync.Mutex
	chatID int64
}

func NewTelegramGateway(token string, chatID int64, inbox Inbox) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{Bot: bot, Inbox: inbox, chatID: chatID}, nil
}

// ChatID returns the chat announcements are mirrored to, or 0.
func (tg *TelegramGateway) ChatID() int64 {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	return tg.chatID
}

func (tg *TelegramGateway) accept(chatID int64) bool {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	if tg.chatID == 0 {
		tg.chatID = chatID
	}
	return tg.chatID == chatID
}

func (tg *TelegramGateway) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			tg.Bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg := update.Message
			if msg == nil || msg.Chat == nil {
				continue
			}
			text := strings.TrimSpace(msg.Text)
			if text == "" {
				continue
			}
			if !tg.accept(msg.Chat.ID) {
				log.Printf("Ignoring telegram message from chat %d", msg.Chat.ID)
				continue
			}

			if msg.From != nil {
				log.Printf("[%s] %s", msg.From.UserName, text)
			}
			tg.Inbox.Push(text)
		}
	}
}

func (tg *TelegramGateway) Send(chatID int64, text string) error {
	if chatID == 0 {
		return fmt.Errorf("invalid chat ID: %d", chatID)
	}
	_, err := tg.Bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Speak mirrors an announcement to the active chat. It does nothing until
// a chat is known.
func (tg *TelegramGateway) Speak(_ context.Context, text string) error {
	id := tg.ChatID()
	if id == 0 {
		return nil
	}
	return tg.Send(id, text)
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
