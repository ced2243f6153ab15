package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/SHIN-ko/chuihyang-sub000/pkg/logx"
)

// TelegramConfig configures the Telegram sink.
type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Telegram delivers reminders as messages from a bot to a fixed chat
// (typically the user's own DM with the bot). Send-only: no poller, no
// command handling.
type Telegram struct {
	cfg TelegramConfig
	log logx.Logger
	bot *tele.Bot
}

func NewTelegram(cfg TelegramConfig, log logx.Logger) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &Telegram{cfg: cfg, log: log, bot: b}, nil
}

func (t *Telegram) Deliver(ctx context.Context, d Delivery) error {
	text := fmt.Sprintf("<b>%s</b>\n%s", escapeHTML(d.Title), escapeHTML(d.Body))
	opts := &tele.SendOptions{
		ParseMode:           tele.ModeHTML,
		DisableNotification: !d.Sound,
	}

	// telebot's Send has no context plumbing; bound it ourselves so a hung
	// API call cannot wedge the gateway's fire path.
	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(tele.ChatID(t.cfg.ChatID), text, opts)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(15 * time.Second):
		return errors.New("telegram send timed out")
	}
}

// Ready probes the target chat. A failure here usually means the bot was
// never started by the user or the chat id is wrong.
func (t *Telegram) Ready(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		_, err := t.bot.ChatByID(t.cfg.ChatID)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("telegram chat probe: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(10 * time.Second):
		return errors.New("telegram chat probe timed out")
	}
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
