package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/internal/service/chat"
	"github.com/sandevgo/campusbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const (
	baseContextKey = "base_context"
	greeting       = "Hi! I'm CampusBot. Ask me about your classes, tasks or announcements, for example \"show my tasks\" or \"what's my schedule for this week?\""
	failureText    = "I'm sorry, I'm having trouble processing your request right now. Please try again in a moment."
)

type Assistant interface {
	Chat(ctx context.Context, user, message string) (chat.Reply, error)
	Clear(user string)
}

type Bot struct {
	bot       *tele.Bot
	sender    *sender
	assistant Assistant
	ownerID   int64
}

func NewBot(
	ctx context.Context,
	cfg core.TelegramConfig,
	assistant Assistant,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.GetTelegramToken(),
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:       b,
		sender:    newSender(b),
		assistant: assistant,
		ownerID:   cfg.GetTelegramOwnerID(),
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// A zero owner id leaves the bot open to every student.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if bot.ownerID != 0 && c.Sender().ID != bot.ownerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle("/clear", bot.handleClear)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func userKey(c tele.Context) string {
	return fmt.Sprintf("telegram-%d", c.Chat().ID)
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(greeting)
}

func (b *Bot) handleClear(c tele.Context) error {
	b.assistant.Clear(userKey(c))
	return c.Send("Chat history cleared")
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx).With().Str("user", userKey(c)).Logger()

	_ = c.Notify(tele.Typing)

	reply, err := b.assistant.Chat(ctx, userKey(c), c.Text())
	if err != nil {
		logger.Error().Err(err).Msg("chat failed")
		return c.Send(failureText)
	}

	if err := b.sender.sendMarkdown(ctx, c.Recipient(), reply.Response, false); err != nil {
		logger.Error().Err(err).Msg("failed to deliver reply")
	}
	return nil
}
