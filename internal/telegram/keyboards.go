package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"

	"tournament-bot/internal/registration"
)

// MainKeyboard returns the main menu keyboard
func MainKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Записаться", CallbackData: "join"},
			},
			{
				{Text: "🎟 Мой статус", CallbackData: "status"},
			},
		},
	}
}

// PriceKeyboard returns the tier selection keyboard, two tiers per row
func PriceKeyboard() *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton

	for _, amount := range registration.Tiers {
		row = append(row, models.InlineKeyboardButton{
			Text:         fmt.Sprintf("%d грн", amount),
			CallbackData: fmt.Sprintf("price_%d", amount),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
