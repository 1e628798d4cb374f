package telegram

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/campusbot/pkg/conv"
	"github.com/sandevgo/campusbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

// Telegram rejects messages above 4096 characters.
const maxMessageLen = 4000

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendMarkdown delivers a reply as Telegram HTML. When Telegram refuses the
// first chunk the reply is resent as plain markdown.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string, silent bool) error {
	logger := log.FromCtx(ctx)

	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		return nil
	}

	for i, chunk := range splitChunks(html, maxMessageLen) {
		opts := []interface{}{tele.ModeHTML}
		if silent {
			opts = append(opts, tele.Silent)
		}
		_, err := s.bot.Send(to, chunk, opts...)
		if err == nil {
			continue
		}
		if i > 0 {
			logger.Error().Err(err).Int("chunk", i).Msg("failed to send telegram chunk")
			return err
		}
		logger.Warn().Err(err).Int("chunk", i).Msg("html chunk rejected, retrying as plain text")

		for _, plain := range splitChunks(md, maxMessageLen) {
			if _, err := s.bot.Send(to, plain); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// splitChunks cuts text into pieces of at most maxLen bytes, preferring line
// breaks and never splitting a rune.
func splitChunks(text string, maxLen int) []string {
	var chunks []string
	for len(text) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = maxLen
		}
		if idx := strings.LastIndex(text[:cut], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
