// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package alert implements the chat-bot recipient: a Settings store, a
// runtime per-channel state machine driving online/offline and
// in-range/out-of-range notifications, and the command surface subscribers
// use to manage their subscriptions.
package alert

import (
	"time"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// ChatID identifies one chat-bot conversation. It is the bot transport's
// own identifier type (an int64 chat id for Telegram).
type ChatID int64

// CommonSettings holds the thresholds shared across all channels and chats.
type CommonSettings struct {
	OfflineTimeout time.Duration `json:"offline_timeout"`
	Hysteresis     float64       `json:"hysteresis"`
}

// DefaultCommonSettings returns the spec's defaults: 120s offline timeout,
// hysteresis of 5.0.
func DefaultCommonSettings() CommonSettings {
	return CommonSettings{
		OfflineTimeout: 120 * time.Second,
		Hysteresis:     5.0,
	}
}

// ChannelSubscription is one chat's view of one channel: the range
// considered normal, and the hysteresis latch tracking whether the channel
// is currently considered to be in an alerted ("bad") state.
type ChannelSubscription struct {
	NormalRange valueRange `json:"normal_range"`
	IsBad       bool       `json:"is_bad"`
}

// defaultSubscription mirrors the original bot's default normal range.
func defaultSubscription() ChannelSubscription {
	return ChannelSubscription{NormalRange: valueRange{Lo: 30.0, Hi: 80.0}}
}

// Chat holds one chat's subscriptions, keyed by channel.
type Chat struct {
	Subscriptions map[model.ChannelId]ChannelSubscription `json:"subscriptions"`
}

// Settings is the single serialized blob persisted under the
// "telegram-state" storage key.
type Settings struct {
	Common CommonSettings  `json:"common"`
	Chats  map[ChatID]Chat `json:"chats"`
}

// DefaultSettings is used when no prior Settings value can be loaded.
func DefaultSettings() Settings {
	return Settings{
		Common: DefaultCommonSettings(),
		Chats:  make(map[ChatID]Chat),
	}
}
