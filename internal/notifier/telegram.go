package notifier

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// TelegramPoster posts to a Telegram chat through a bot, chaining thread
// units as replies.
type TelegramPoster struct {
	bot    *telego.Bot
	chatID int64
}

// NewTelegramPoster returns new TelegramPoster.
func NewTelegramPoster(token string, chatID int64) (*TelegramPoster, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("can't create bot: %w", err)
	}

	return &TelegramPoster{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Post sends text to the chat, replying to inReplyTo when set, and returns
// the sent message's id.
func (p *TelegramPoster) Post(ctx context.Context, text, inReplyTo string) (string, error) {
	msg := tu.Message(tu.ID(p.chatID), text)

	if inReplyTo != "" {
		messageID, err := strconv.Atoi(inReplyTo)
		if err != nil {
			return "", fmt.Errorf("can't parse reply target %q: %w", inReplyTo, err)
		}
		msg = msg.WithReplyParameters(&telego.ReplyParameters{MessageID: messageID})
	}

	sent, err := p.bot.SendMessage(msg)
	if err != nil {
		return "", fmt.Errorf("can't send message: %w", err)
	}

	return strconv.Itoa(sent.MessageID), nil
}
