// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/rtherm/internal/storage"
	"github.com/ClusterCockpit/rtherm/pkg/model"
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []notification
	updates  []incomingMessage
	updateErr error
}

func (f *fakeBot) Send(chatID ChatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeBot) GetUpdates(offset int) ([]incomingMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	updates := f.updates
	f.updates = nil
	return updates, f.updateErr
}

func (f *fakeBot) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Text
}

func newTestEngine() (*Engine, *fakeBot) {
	fb := &fakeBot{}
	e := newEngine(context.Background(), storage.NewMem(), fb)
	return e, fb
}

func TestSubscribeThenDuplicateReportsAlready(t *testing.T) {
	e, _ := newTestEngine()

	reply := e.handle(1, "/subscribe temp0")
	assert.Contains(t, reply, "successfully subscribed")

	reply = e.handle(1, "/subscribe_temp0")
	assert.Contains(t, reply, "already subscribed")
}

func TestUnsubscribeRemovesSubscription(t *testing.T) {
	e, _ := newTestEngine()
	e.handle(1, "/subscribe temp0")

	reply := e.handle(1, "/unsubscribe temp0")
	assert.Contains(t, reply, "Unsubscribed")

	reply = e.handle(1, "/unsubscribe temp0")
	assert.Contains(t, reply, "not subscribed")
}

func TestSubscribeNoArgListsSuggestions(t *testing.T) {
	e, _ := newTestEngine()
	e.Update(context.Background(), model.Measurements{
		model.MustChannelId("temp0"): {{Value: 10, Time: time.Now()}},
	})

	reply := e.handle(1, "/subscribe")
	assert.Contains(t, reply, "/subscribe_temp0")
}

func TestUnknownCommandIsError(t *testing.T) {
	e, _ := newTestEngine()
	reply := e.handle(1, "/bogus")
	assert.Contains(t, reply, "Error:")
}

func TestMissingSlashPrefixIsError(t *testing.T) {
	e, _ := newTestEngine()
	reply := e.handle(1, "hello")
	assert.Equal(t, "Error: commands must start with '/'", reply)
}

func TestDigestUnknownChannelIsError(t *testing.T) {
	e, _ := newTestEngine()
	reply := e.handle(1, "/digest nope")
	assert.Contains(t, reply, "Error:")
}

func TestUpdateSendsOnlineNotificationOnFirstSight(t *testing.T) {
	e, fb := newTestEngine()
	e.handle(1, "/subscribe temp0")

	errs := e.Update(context.Background(), model.Measurements{
		model.MustChannelId("temp0"): {{Value: 50, Time: time.Now()}},
	})
	require.Empty(t, errs)
	assert.Contains(t, fb.lastText(), "is online")
}

func TestUpdateTriggersOutOfRangeAndReturnToNormal(t *testing.T) {
	e, fb := newTestEngine()
	e.handle(1, "/subscribe temp0")
	// consume the online notification
	e.Update(context.Background(), model.Measurements{
		model.MustChannelId("temp0"): {{Value: 50, Time: time.Now()}},
	})

	e.Update(context.Background(), model.Measurements{
		model.MustChannelId("temp0"): {{Value: 200, Time: time.Now().Add(time.Second)}},
	})
	assert.Contains(t, fb.lastText(), "out of normal range")

	e.Update(context.Background(), model.Measurements{
		model.MustChannelId("temp0"): {{Value: 50, Time: time.Now().Add(2 * time.Second)}},
	})
	assert.Contains(t, fb.lastText(), "returned to normal range")
}

func TestMonitorFlipsOfflineAfterTimeout(t *testing.T) {
	e, fb := newTestEngine()
	e.handle(1, "/subscribe temp0")
	e.withSettings(func(s *Settings) { s.Common.OfflineTimeout = time.Millisecond })

	e.Update(context.Background(), model.Measurements{
		model.MustChannelId("temp0"): {{Value: 50, Time: time.Now()}},
	})

	time.Sleep(5 * time.Millisecond)
	e.runMonitorOnce(context.Background())

	assert.Contains(t, fb.lastText(), "offline")
}

func TestParseCommandAcceptsBothArgumentForms(t *testing.T) {
	c1, err := parseCommand("/digest foo")
	require.NoError(t, err)
	assert.Equal(t, parsedCommand{Name: "digest", Arg: "foo"}, c1)

	c2, err := parseCommand("/digest_foo")
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestParseCommandRejectsExtraArguments(t *testing.T) {
	_, err := parseCommand("/digest foo bar")
	assert.Error(t, err)
}
