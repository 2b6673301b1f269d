// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of rtherm.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package alert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ClusterCockpit/rtherm/pkg/model"
)

// parsedCommand is a recognized "/name[ _]arg?" chat command.
type parsedCommand struct {
	Name string
	Arg  string // empty if no argument was given
}

// parseCommand accepts both "/digest foo" and "/digest_foo" argument forms.
// It returns an error describing exactly what is wrong (missing prefix,
// unknown command, extra arguments); the caller turns that into the
// user-visible "Error: ..." reply.
func parseCommand(text string) (parsedCommand, error) {
	if !strings.HasPrefix(text, "/") {
		return parsedCommand{}, fmt.Errorf("commands must start with '/'")
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return parsedCommand{}, fmt.Errorf("empty command")
	}

	head, rest := fields[0], fields[1:]
	name, underscoreArg, hasUnderscoreArg := strings.Cut(head, "_")

	if !isKnownCommand(name) {
		return parsedCommand{}, fmt.Errorf("unknown command %q", name)
	}

	switch {
	case hasUnderscoreArg:
		if len(rest) > 0 {
			return parsedCommand{}, fmt.Errorf("too many arguments")
		}
		return parsedCommand{Name: name, Arg: underscoreArg}, nil
	case len(rest) == 0:
		return parsedCommand{Name: name}, nil
	case len(rest) == 1:
		return parsedCommand{Name: name, Arg: rest[0]}, nil
	default:
		return parsedCommand{}, fmt.Errorf("too many arguments")
	}
}

func isKnownCommand(name string) bool {
	switch name {
	case "help", "start", "digest", "subscribe", "unsubscribe":
		return true
	default:
		return false
	}
}

const helpText = `These commands are supported:
/help, /start - display this text.
/digest - show a summary line per channel.
/digest <channel> - show full statistics for one channel.
/subscribe <channel> - subscribe to alerts for one channel.
/subscribe - list channels you can subscribe to.
/unsubscribe <channel> - remove a subscription.
/unsubscribe - list your current subscriptions.`

// handle dispatches one parsed command against the engine state, returning
// the chat-visible reply text. It takes the Settings write guard itself when
// a mutation is needed (subscribe/unsubscribe); digest and help only read.
func (e *Engine) handle(chatID ChatID, text string) string {
	cmd, err := parseCommand(strings.TrimSpace(text))
	if err != nil {
		return "Error: " + err.Error()
	}

	switch cmd.Name {
	case "help", "start":
		return helpText
	case "digest":
		return e.handleDigest(cmd.Arg)
	case "subscribe":
		return e.handleSubscribe(chatID, cmd.Arg)
	case "unsubscribe":
		return e.handleUnsubscribe(chatID, cmd.Arg)
	default:
		return "Error: unknown command"
	}
}

func (e *Engine) handleDigest(arg string) string {
	if arg == "" {
		e.state.mu.RLock()
		defer e.state.mu.RUnlock()
		ids := make([]model.ChannelId, 0, len(e.state.channels))
		for id := range e.state.channels {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		if len(ids) == 0 {
			return "No channels seen yet."
		}
		var b strings.Builder
		for _, id := range ids {
			stats := e.state.channels[id].Values.Statistics()
			fmt.Fprintf(&b, "`%s`: %s\n", id, digestLine(stats))
		}
		return b.String()
	}

	id, err := model.NewChannelId(arg)
	if err != nil {
		return "Error: " + err.Error()
	}

	e.state.mu.RLock()
	defer e.state.mu.RUnlock()
	cs, ok := e.state.channels[id]
	if !ok {
		return fmt.Sprintf("Error: unknown channel %q", id)
	}
	return fmt.Sprintf("`%s`:\n%s", id, cs.Values.Statistics().Digest())
}

func digestLine(stats interface{ Digest() string }) string {
	// one-line approximation of the full digest, for the no-arg overview
	return strings.ReplaceAll(stats.Digest(), "\n", ", ")
}

func (e *Engine) handleSubscribe(chatID ChatID, arg string) string {
	if arg == "" {
		return e.suggestionList(chatID, "subscribe", true)
	}
	id, err := model.NewChannelId(arg)
	if err != nil {
		return "Error: " + err.Error()
	}

	var reply string
	e.withSettings(func(s *Settings) {
		chat := s.Chats[chatID]
		if chat.Subscriptions == nil {
			chat.Subscriptions = make(map[model.ChannelId]ChannelSubscription)
		}
		if _, already := chat.Subscriptions[id]; already {
			reply = fmt.Sprintf("You are already subscribed to `%s`.", id)
			return
		}
		chat.Subscriptions[id] = defaultSubscription()
		s.Chats[chatID] = chat
		reply = fmt.Sprintf("You have successfully subscribed to `%s`.", id)
	})
	return reply
}

func (e *Engine) handleUnsubscribe(chatID ChatID, arg string) string {
	if arg == "" {
		return e.suggestionList(chatID, "unsubscribe", false)
	}
	id, err := model.NewChannelId(arg)
	if err != nil {
		return "Error: " + err.Error()
	}

	var reply string
	e.withSettings(func(s *Settings) {
		chat := s.Chats[chatID]
		if _, present := chat.Subscriptions[id]; !present {
			reply = fmt.Sprintf("You were not subscribed to `%s`.", id)
			return
		}
		delete(chat.Subscriptions, id)
		s.Chats[chatID] = chat
		reply = fmt.Sprintf("Unsubscribed from `%s`.", id)
	})
	return reply
}

// suggestionList lists candidate channel commands: every known channel for
// "subscribe", or the chat's current subscriptions for "unsubscribe".
func (e *Engine) suggestionList(chatID ChatID, verb string, allChannels bool) string {
	var ids []model.ChannelId
	if allChannels {
		e.state.mu.RLock()
		for id := range e.state.channels {
			ids = append(ids, id)
		}
		e.state.mu.RUnlock()
	} else {
		e.settings.Read(func(s *Settings) {
			for id := range s.Chats[chatID].Subscriptions {
				ids = append(ids, id)
			}
		})
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if len(ids) == 0 {
		return fmt.Sprintf("No channels to %s.", verb)
	}
	var b strings.Builder
	b.WriteString("Try one of:\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "/%s_%s\n", verb, id)
	}
	return b.String()
}
