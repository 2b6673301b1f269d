// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/time/rate"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/ClusterCockpit/rtherm/internal/storage"
	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// settingsKey is the single Storage key the alert engine persists its
// Settings blob under; all other keys are reserved by other components.
const settingsKey = "telegram-state"

// Engine is the chat-bot Recipient: it owns the durable Settings store,
// the in-memory per-channel state machine, the bot transport and a rate
// limiter guarding outbound sends.
type Engine struct {
	settings *storage.Stored[Settings]
	state    *state
	bot      bot
	limiter  *rate.Limiter
}

// NewEngine constructs an Engine whose Settings are loaded from (or
// defaulted into) backend, talking to Telegram with token.
func NewEngine(ctx context.Context, backend storage.Storage, token string) (*Engine, error) {
	tb, err := newTelegramBot(token)
	if err != nil {
		return nil, fmt.Errorf("alert: creating bot: %w", err)
	}
	return newEngine(ctx, backend, tb), nil
}

func newEngine(ctx context.Context, backend storage.Storage, b bot) *Engine {
	return &Engine{
		settings: storage.LoadOrDefault(ctx, settingsKey, backend, DefaultSettings()),
		state:    newState(),
		bot:      b,
		limiter:  rate.NewLimiter(rate.Limit(20.0/60.0), 5), // 20 msg/min, bursts of 5, shared by all chats
	}
}

type notification struct {
	ChatID ChatID
	Text   string
}

// Update implements recipient.Recipient. See the package doc and spec
// section on the alert engine for the exact state machine; in short: for
// every non-empty channel in meas, update its history, detect an
// online transition, and re-evaluate every subscribed chat's hysteresis
// latch, queuing a notification per transition. Settings are persisted
// once after all channels are processed. Notifications are sent only
// after the state lock is released.
func (e *Engine) Update(ctx context.Context, meas model.Measurements) []error {
	var notifications []notification

	e.state.mu.Lock()
	g := e.settings.Write()
	settings := g.Value()

	for id, points := range meas {
		if len(points) == 0 {
			continue
		}
		vr := rangeOf(points)

		cs := e.state.entry(id)
		cs.Values.Update(points)
		becomesOnline := !cs.Online
		cs.Online = true
		cs.LastUpdate = time.Now()

		for chatID, chat := range settings.Chats {
			sub, subscribed := chat.Subscriptions[id]
			if !subscribed {
				continue
			}

			if becomesOnline {
				notifications = append(notifications, notification{
					ChatID: chatID,
					Text:   fmt.Sprintf("`%s` is online (value: %s).", id, vr),
				})
			}

			switch {
			case !sub.IsBad && !sub.NormalRange.contains(vr):
				sub.IsBad = true
				notifications = append(notifications, notification{
					ChatID: chatID,
					Text:   fmt.Sprintf("Alert!\n`%s` value %s is out of normal range %s.", id, vr, sub.NormalRange),
				})
			case sub.IsBad && sub.NormalRange.narrow(settings.Common.Hysteresis).contains(vr):
				sub.IsBad = false
				notifications = append(notifications, notification{
					ChatID: chatID,
					Text:   fmt.Sprintf("`%s` value %s returned to normal range %s.", id, vr, sub.NormalRange),
				})
			}
			chat.Subscriptions[id] = sub
		}
	}

	g.Commit(ctx)
	e.state.mu.Unlock()

	var errs []error
	for _, n := range notifications {
		if err := e.send(ctx, n.ChatID, n.Text); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (e *Engine) send(ctx context.Context, chatID ChatID, text string) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}
	return e.bot.Send(chatID, text)
}

func (e *Engine) withSettings(fn func(s *Settings)) {
	g := e.settings.Write()
	fn(g.Value())
	g.Commit(context.Background())
}

// runMonitorOnce flips every channel whose last update is older than
// offline_timeout from online to offline, notifying every chat subscribed
// to it. This is the sole source of offline transitions.
func (e *Engine) runMonitorOnce(ctx context.Context) {
	var notifications []notification
	now := time.Now()

	e.state.mu.Lock()
	var offlineTimeout time.Duration
	var chats map[ChatID]Chat
	e.settings.Read(func(s *Settings) {
		offlineTimeout = s.Common.OfflineTimeout
		chats = s.Chats
	})

	for id, cs := range e.state.channels {
		if !cs.Online {
			continue
		}
		if cs.LastUpdate.Add(offlineTimeout).After(now) {
			continue
		}
		cs.Online = false
		for chatID, chat := range chats {
			if _, subscribed := chat.Subscriptions[id]; subscribed {
				notifications = append(notifications, notification{
					ChatID: chatID,
					Text:   fmt.Sprintf("Alert!\n`%s` is offline.", id),
				})
			}
		}
	}
	e.state.mu.Unlock()

	for _, n := range notifications {
		if err := e.send(ctx, n.ChatID, n.Text); err != nil {
			cclog.Errorf("[ALERT]> sending offline notification: %s", err.Error())
		}
	}
}

// RunMonitor schedules runMonitorOnce to wake every offline_timeout/2,
// using a gocron scheduler, and blocks until ctx is done.
func (e *Engine) RunMonitor(ctx context.Context) error {
	var offlineTimeout time.Duration
	e.settings.Read(func(s *Settings) { offlineTimeout = s.Common.OfflineTimeout })

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("alert: creating scheduler: %w", err)
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(offlineTimeout/2),
		gocron.NewTask(func() { e.runMonitorOnce(ctx) }),
	); err != nil {
		return fmt.Errorf("alert: scheduling monitor job: %w", err)
	}

	sched.Start()
	<-ctx.Done()
	return sched.Shutdown()
}

// RunPoll long-polls the bot transport for new chat messages and replies to
// recognized commands, until ctx is done. Poll failures are logged and
// retried; non-text updates are logged and skipped.
func (e *Engine) RunPoll(ctx context.Context) {
	offset := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := e.bot.GetUpdates(offset)
		if err != nil {
			cclog.Errorf("[ALERT]> polling updates: %s", err.Error())
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if !u.IsText {
				cclog.Debugf("[ALERT]> dropping non-text update %d", u.UpdateID)
				continue
			}
			reply := e.handle(u.ChatID, u.Text)
			if err := e.send(ctx, u.ChatID, reply); err != nil {
				cclog.Errorf("[ALERT]> replying to chat %d: %s", u.ChatID, err.Error())
			}
		}
	}
}
