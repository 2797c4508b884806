// Package notifier delivers direct messages that are not replies to an
// incoming update: forwarding payment proofs to the operator and telling
// participants the verdict.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"tournament-bot/internal/config"
	"tournament-bot/internal/storage"
)

type Notifier struct {
	cfg *config.Config
	bot *bot.Bot
	log *slog.Logger
}

// New creates a Notifier sending through b.
func New(cfg *config.Config, b *bot.Bot, log *slog.Logger) *Notifier {
	return &Notifier{
		cfg: cfg,
		bot: b,
		log: log,
	}
}

// ForwardProof sends a payment screenshot to the operator inbox together
// with the participant identity, so /confirm can be issued by id.
func (n *Notifier) ForwardProof(ctx context.Context, photoFileID string, p *storage.Participant, e *storage.Entry) error {
	if n.cfg.AdminID == 0 {
		n.log.Warn("no operator configured, dropping proof", "user_id", p.UserID)
		return nil
	}

	caption := fmt.Sprintf(
		"Новая оплата от %d (%s)\nСумма: %d грн\n\n/confirm %d\n/reject %d",
		p.UserID, p.Nickname, e.Amount, p.UserID, p.UserID,
	)

	_, err := n.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  n.cfg.AdminID,
		Photo:   &models.InputFileString{Data: photoFileID},
		Caption: caption,
	})
	if err != nil {
		return fmt.Errorf("forward proof: %w", err)
	}
	return nil
}

// PaymentConfirmed tells a participant their payment went through.
func (n *Notifier) PaymentConfirmed(ctx context.Context, userID int64) error {
	return n.send(ctx, userID, "Твоя оплата подтверждена 🔥")
}

// PaymentRejected tells a participant their payment was declined.
func (n *Notifier) PaymentRejected(ctx context.Context, userID int64) error {
	return n.send(ctx, userID, "Оплата не прошла проверку ❌ Свяжись с организатором.")
}

func (n *Notifier) send(ctx context.Context, userID int64, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("notify %d: %w", userID, err)
	}
	return nil
}
