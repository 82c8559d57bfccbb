package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/easayliu/mediabox-download/internal/infrastructure/config"
	"github.com/easayliu/mediabox-download/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client Telegram通知客户端
// 只用于单向推送任务结果,不处理入站消息
type Client struct {
	config *config.TelegramConfig
	bot    *tgbotapi.BotAPI
}

// NewClient 创建Telegram客户端
// 连接失败时返回带nil bot的客户端,后续发送调用会直接报错而不是崩溃
func NewClient(cfg *config.TelegramConfig) *Client {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("Failed to create Telegram bot", "error", err)
		return &Client{config: cfg, bot: nil}
	}

	logger.Info("Telegram bot connected successfully", "username", bot.Self.UserName)
	return &Client{config: cfg, bot: bot}
}

// SendMessage 向指定会话发送HTML格式消息
func (c *Client) SendMessage(chatID int64, text string) error {
	if c.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}

	msg := tgbotapi.NewMessage(chatID, cleanUTF8(text))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Broadcast 向配置的所有会话发送消息,单个会话失败不影响其他会话
func (c *Client) Broadcast(text string) {
	for _, chatID := range c.config.ChatIDs {
		if err := c.SendMessage(chatID, text); err != nil {
			logger.Warn("Failed to send telegram notification", "chat_id", chatID, "error", err)
		}
	}
}

// cleanUTF8 确保文本是有效的UTF-8编码
func cleanUTF8(text string) string {
	if !utf8.ValidString(text) {
		return strings.ToValidUTF8(text, "?")
	}
	return text
}
