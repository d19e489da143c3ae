package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"freightcalc/internal/reconcile"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts run outcomes to a chat. Delivery problems are logged and
// never fail the run.
type Telegram struct {
	api           sender
	chatID        int64
	retryInterval time.Duration
	retryMaxTime  time.Duration
	logger        *zap.Logger
}

func NewTelegram(token string, chatID int64, retryMaxTime time.Duration, logger *zap.Logger) (*Telegram, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Info("Telegram notifier authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("chat_id", chatID))

	return newTelegram(botAPI, chatID, retryMaxTime, logger), nil
}

func newTelegram(api sender, chatID int64, retryMaxTime time.Duration, logger *zap.Logger) *Telegram {
	return &Telegram{
		api:           api,
		chatID:        chatID,
		retryInterval: 500 * time.Millisecond,
		retryMaxTime:  retryMaxTime,
		logger:        logger,
	}
}

func (t *Telegram) Done(ctx context.Context, s reconcile.Summary) {
	t.send(ctx, "📦 "+FormatDone(s), zap.String("run_id", s.RunID))
}

func (t *Telegram) Failed(ctx context.Context, runID string, err error) {
	t.send(ctx, FormatFailed(err), zap.String("run_id", runID))
}

func (t *Telegram) send(ctx context.Context, text string, fields ...zap.Field) {
	// A zero retry budget means a single attempt.
	var retryPolicy backoff.BackOff = &backoff.StopBackOff{}
	if t.retryMaxTime > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = t.retryInterval
		exp.MaxElapsedTime = t.retryMaxTime
		retryPolicy = exp
	}

	msg := tgbotapi.NewMessage(t.chatID, text)

	err := backoff.RetryNotify(
		func() error {
			_, err := t.api.Send(msg)
			return err
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			t.logger.Warn("Telegram notification failed, retrying...",
				append(fields, zap.Error(err), zap.Duration("next_attempt_in", next))...)
		},
	)
	if err != nil {
		t.logger.Error("Failed to send Telegram notification",
			append(fields, zap.Int64("chat_id", t.chatID), zap.Error(err))...)
	}
}
