// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package alert

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// incomingMessage is the engine's transport-agnostic view of one received
// chat update: a text message from a chat, or a non-text update noted only
// for logging.
type incomingMessage struct {
	UpdateID int
	ChatID   ChatID
	Text     string
	IsText   bool
}

// bot is the chat transport capability the engine needs: sending a message
// to a chat, and long-polling for updates starting at a given offset. It
// exists so the engine can be tested without a live Telegram connection.
type bot interface {
	Send(chatID ChatID, text string) error
	GetUpdates(offset int) ([]incomingMessage, error)
}

// telegramBot adapts go-telegram-bot-api's client to the bot interface.
type telegramBot struct {
	api *tgbotapi.BotAPI
}

func newTelegramBot(token string) (*telegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &telegramBot{api: api}, nil
}

func (t *telegramBot) Send(chatID ChatID, text string) error {
	msg := tgbotapi.NewMessage(int64(chatID), text)
	_, err := t.api.Send(msg)
	return err
}

func (t *telegramBot) GetUpdates(offset int) ([]incomingMessage, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = 30

	updates, err := t.api.GetUpdates(cfg)
	if err != nil {
		return nil, err
	}

	out := make([]incomingMessage, 0, len(updates))
	for _, u := range updates {
		m := incomingMessage{UpdateID: u.UpdateID}
		if u.Message != nil {
			m.ChatID = ChatID(u.Message.Chat.ID)
			m.Text = u.Message.Text
			m.IsText = u.Message.Text != ""
		}
		out = append(out, m)
	}
	return out, nil
}
