// Package middleware provides bot middleware for filtering updates.
package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ChatLeaver is the part of *bot.Bot the filter needs to leave a chat
type ChatLeaver interface {
	LeaveChat(ctx context.Context, params *bot.LeaveChatParams) (bool, error)
}

// ChatFilter creates a middleware that only lets updates from allowedChatIDs through.
// If allowedChatIDs is empty, all chats are allowed.
// If autoLeave is true, the bot leaves unauthorized chats.
func ChatFilter(allowedChatIDs []int64, autoLeave bool, logger *slog.Logger) bot.Middleware {
	f := newFilter(allowedChatIDs, autoLeave, logger)

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			var leaver ChatLeaver
			if b != nil {
				leaver = b
			}
			if f.allow(ctx, leaver, update) {
				next(ctx, b, update)
			}
		}
	}
}

type filter struct {
	allowed   map[int64]bool
	allowAll  bool
	autoLeave bool
	logger    *slog.Logger
}

func newFilter(allowedChatIDs []int64, autoLeave bool, logger *slog.Logger) *filter {
	allowed := make(map[int64]bool, len(allowedChatIDs))
	for _, id := range allowedChatIDs {
		allowed[id] = true
	}

	logger.Info("chat filter configured",
		"allow_all", len(allowed) == 0,
		"auto_leave", autoLeave,
		"chat_ids", allowedChatIDs,
	)

	return &filter{
		allowed:   allowed,
		allowAll:  len(allowed) == 0,
		autoLeave: autoLeave,
		logger:    logger,
	}
}

// allow reports whether update may reach the handlers, leaving the chat when configured
func (f *filter) allow(ctx context.Context, leaver ChatLeaver, update *models.Update) bool {
	chatID := extractChatID(update)
	if chatID == 0 {
		return false
	}
	if f.allowAll || f.allowed[chatID] {
		return true
	}

	f.logger.Info("ignoring update from unauthorized chat", "chat_id", chatID)

	if f.autoLeave && leaver != nil {
		f.logger.Info("leaving unauthorized chat", "chat_id", chatID)
		if _, err := leaver.LeaveChat(ctx, &bot.LeaveChatParams{ChatID: chatID}); err != nil {
			f.logger.Error("failed to leave chat", "chat_id", chatID, "error", err)
		}
	}
	return false
}

// extractChatID returns the chat an update belongs to, or 0
func extractChatID(update *models.Update) int64 {
	if update == nil {
		return 0
	}

	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.EditedMessage != nil:
		return update.EditedMessage.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		return update.CallbackQuery.Message.Message.Chat.ID
	case update.MyChatMember != nil:
		return update.MyChatMember.Chat.ID
	default:
		return 0
	}
}
