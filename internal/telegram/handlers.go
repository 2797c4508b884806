package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"tournament-bot/internal/config"
	"tournament-bot/internal/notifier"
	"tournament-bot/internal/registration"
	"tournament-bot/internal/storage"
)

// Bot wraps the telegram bot with handlers
type Bot struct {
	bot    *bot.Bot
	cfg    *config.Config
	svc    *registration.Service
	notify *notifier.Notifier
	log    *slog.Logger
}

// New creates a new telegram bot
func New(cfg *config.Config, svc *registration.Service, log *slog.Logger) (*Bot, error) {
	b := &Bot{
		cfg: cfg,
		svc: svc,
		log: log,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithCallbackQueryDataHandler("", bot.MatchTypePrefix, b.callbackHandler),
	}

	tgBot, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b.bot = tgBot
	b.notify = notifier.New(cfg, tgBot, log)

	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, b.startHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/confirm", bot.MatchTypePrefix, b.confirmHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/reject", bot.MatchTypePrefix, b.rejectHandler)

	return b, nil
}

// Start starts the bot polling
func (b *Bot) Start(ctx context.Context) {
	b.bot.Start(ctx)
}

// --- Handlers ---

func (b *Bot) startHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	b.sendMessage(ctx, update.Message.Chat.ID,
		"Добро пожаловать в турнир по Brawl Stars 🔥",
		MainKeyboard(),
	)
}

func (b *Bot) confirmHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.verdictHandler(ctx, update, "/confirm", b.svc.Confirm, "Подтверждено ✅", b.notify.PaymentConfirmed)
}

func (b *Bot) rejectHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.verdictHandler(ctx, update, "/reject", b.svc.Reject, "Отклонено ❌", b.notify.PaymentRejected)
}

// verdictHandler handles the operator commands. Unauthorized callers get
// no response at all; the command stays invisible to participants.
func (b *Bot) verdictHandler(
	ctx context.Context,
	update *models.Update,
	command string,
	verdict func(operatorID, userID int64) (bool, error),
	okText string,
	notify func(ctx context.Context, userID int64) error,
) {
	if update.Message == nil {
		return
	}

	operatorID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	fields := strings.Fields(update.Message.Text)
	if len(fields) != 2 {
		if operatorID == b.cfg.AdminID && b.cfg.AdminID != 0 {
			b.sendMessage(ctx, chatID, fmt.Sprintf("Использование: %s <user_id>", command), nil)
		}
		return
	}

	userID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		if operatorID == b.cfg.AdminID && b.cfg.AdminID != 0 {
			b.sendMessage(ctx, chatID, fmt.Sprintf("Использование: %s <user_id>", command), nil)
		}
		return
	}

	authorized, err := verdict(operatorID, userID)
	if !authorized {
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		b.sendMessage(ctx, chatID, "У этого участника нет активной заявки.", nil)
		return
	}
	if err != nil {
		b.log.Error("close entry", "user_id", userID, "error", err)
		b.sendMessage(ctx, chatID, "Не получилось обновить заявку, попробуй ещё раз.", nil)
		return
	}

	b.sendMessage(ctx, chatID, okText, nil)

	if err := notify(ctx, userID); err != nil {
		b.log.Error("notify participant", "user_id", userID, "error", err)
	}
}

func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	if len(update.Message.Photo) > 0 {
		b.handlePhoto(ctx, update.Message)
		return
	}

	if update.Message.Text == "" {
		return
	}

	userID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)

	accepted, err := b.svc.SubmitText(userID, text)
	if err != nil {
		b.log.Error("submit nickname", "user_id", userID, "error", err)
		return
	}
	if !accepted {
		// Out-of-flow text is dropped on purpose.
		return
	}

	b.sendMessage(ctx, update.Message.Chat.ID, "Выбери сумму участия:", PriceKeyboard())
}

func (b *Bot) handlePhoto(ctx context.Context, msg *models.Message) {
	userID := msg.From.ID

	entry, err := b.svc.SubmitProof(userID)
	if errors.Is(err, storage.ErrNotFound) {
		// Photo from someone without an open entry.
		b.log.Info("photo without open entry", "user_id", userID)
		return
	}
	if err != nil {
		b.log.Error("submit proof", "user_id", userID, "error", err)
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, "Скрин получен. Ожидай подтверждения ✅", nil)

	participant, err := b.svc.Participant(userID)
	if err != nil {
		b.log.Error("load participant", "user_id", userID, "error", err)
		return
	}

	// Telegram sorts photo sizes ascending; forward the largest.
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	if err := b.notify.ForwardProof(ctx, fileID, participant, entry); err != nil {
		b.log.Error("forward proof", "user_id", userID, "error", err)
	}
}

func (b *Bot) callbackHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	cb := update.CallbackQuery
	data := cb.Data

	// Answer callback to remove loading state
	tgBot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
	})

	switch {
	case data == "join":
		b.handleJoin(ctx, cb)
	case data == "status":
		b.handleStatus(ctx, cb)
	case strings.HasPrefix(data, "price_"):
		b.handlePrice(ctx, cb, data)
	default:
		b.log.Warn("unknown callback", "data", data, "user_id", cb.From.ID)
	}
}

func (b *Bot) handleJoin(ctx context.Context, cb *models.CallbackQuery) {
	b.svc.RequestJoin(cb.From.ID)
	b.editMessage(ctx, cb.Message, "Напиши свой ник в игре:", nil)
}

func (b *Bot) handleStatus(ctx context.Context, cb *models.CallbackQuery) {
	status, err := b.svc.Status(cb.From.ID)
	if errors.Is(err, storage.ErrNotFound) {
		b.editMessage(ctx, cb.Message, "Ты ещё не записан.", MainKeyboard())
		return
	}
	if err != nil {
		b.log.Error("status query", "user_id", cb.From.ID, "error", err)
		return
	}

	b.editMessage(ctx, cb.Message, fmt.Sprintf("Твой статус: %s", status), nil)
}

func (b *Bot) handlePrice(ctx context.Context, cb *models.CallbackQuery, data string) {
	userID := cb.From.ID

	amount, err := strconv.Atoi(strings.TrimPrefix(data, "price_"))
	if err != nil {
		b.log.Warn("bad price callback", "data", data, "user_id", userID)
		return
	}

	entry, err := b.svc.SelectTier(userID, amount)
	switch {
	case errors.Is(err, registration.ErrUnknownTier):
		b.editMessage(ctx, cb.Message, "Выбери сумму участия:", PriceKeyboard())
	case errors.Is(err, storage.ErrNoNickname):
		b.svc.RequestJoin(userID)
		b.editMessage(ctx, cb.Message, "Сначала напиши свой ник в игре:", nil)
	case errors.Is(err, storage.ErrOpenEntry):
		b.editMessage(ctx, cb.Message,
			"У тебя уже есть активная заявка. Дождись подтверждения оплаты.", nil)
	case err != nil:
		b.log.Error("create entry", "user_id", userID, "error", err)
	default:
		b.editMessage(ctx, cb.Message, fmt.Sprintf(
			"💳 Переведи %d грн на %s.\nПосле оплаты отправь скрин сюда.",
			entry.Amount, b.cfg.PaymentCard,
		), nil)
	}
}

// --- Helpers ---

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.bot.SendMessage(ctx, params)
	if err != nil {
		b.log.Error("send message", "error", err)
	}
}

func (b *Bot) editMessage(ctx context.Context, msg models.MaybeInaccessibleMessage, text string, keyboard *models.InlineKeyboardMarkup) {
	if msg.Message == nil {
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:    msg.Message.Chat.ID,
		MessageID: msg.Message.ID,
		Text:      text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.bot.EditMessageText(ctx, params)
	if err != nil {
		b.log.Error("edit message", "error", err)
	}
}
