// Package intents maps action names to handlers. Actions either carry a
// handler or redirect to another action.
package intents

import (
	"context"
	"sort"

	"github.com/go-go-golems/fulfillment/pkg/arguments"
	"github.com/go-go-golems/fulfillment/pkg/conversation"
	"github.com/pkg/errors"
)

// Invocation carries the inputs of a handler call.
type Invocation struct {
	// Input is the raw user input (Actions SDK).
	Input string
	// Parameters are the matched intent parameters (Dialogflow).
	Parameters map[string]any
	// Argument and Status are the first positional argument of the turn.
	Argument any
	Status   *arguments.Status
}

// Handler handles one action.
type Handler func(ctx context.Context, conv *conversation.Conversation, inv Invocation) error

type node struct {
	handler  Handler
	redirect string
}

// Table is the action graph of an application. Build it before serving;
// Resolve is safe for concurrent use as long as the table is not modified.
type Table struct {
	nodes    map[string]node
	fallback Handler
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{nodes: map[string]node{}}
}

// Handle registers handler for action, replacing any previous entry.
func (t *Table) Handle(action string, handler Handler) *Table {
	t.nodes[action] = node{handler: handler}
	return t
}

// Redirect makes action resolve to whatever target resolves to.
func (t *Table) Redirect(action, target string) *Table {
	t.nodes[action] = node{redirect: target}
	return t
}

// Fallback sets the handler used for unknown actions.
func (t *Table) Fallback(handler Handler) *Table {
	t.fallback = handler
	return t
}

// Actions lists registered actions in order.
func (t *Table) Actions() []string {
	ret := make([]string, 0, len(t.nodes))
	for k := range t.nodes {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Resolve follows redirects from action until a handler is found.
func (t *Table) Resolve(action string) (Handler, error) {
	traversed := map[string]struct{}{}
	key := action
	for {
		n, ok := t.nodes[key]
		if !ok || (n.handler == nil && n.redirect == "") {
			if t.fallback != nil {
				return t.fallback, nil
			}
			return nil, &NotFoundError{Action: action}
		}
		if n.handler != nil {
			return n.handler, nil
		}
		if _, seen := traversed[n.redirect]; seen {
			return nil, &CircularRedirectError{Key: n.redirect}
		}
		traversed[n.redirect] = struct{}{}
		key = n.redirect
	}
}

// Validate resolves every registered action and reports the first cycle or
// dangling redirect, so that broken tables fail at startup.
func (t *Table) Validate() error {
	for _, action := range t.Actions() {
		if _, err := t.Resolve(action); err != nil {
			return errors.Wrapf(err, "action %q", action)
		}
	}
	return nil
}

// Dispatch resolves the handler for the conversation and runs it.
func (t *Table) Dispatch(ctx context.Context, conv *conversation.Conversation) error {
	action := ActionOf(conv)
	handler, err := t.Resolve(action)
	if err != nil {
		return err
	}
	return handler(ctx, conv, NewInvocation(conv))
}

// ActionOf returns the routing key of a conversation: the intent name on
// Actions SDK turns, the intent display name (or the action when the intent
// has no name) on Dialogflow turns.
func ActionOf(conv *conversation.Conversation) string {
	if df := conv.Dialogflow; df != nil {
		if df.IntentName != "" {
			return df.IntentName
		}
		return df.Action
	}
	return conv.Intent
}

// NewInvocation builds the handler inputs of a conversation.
func NewInvocation(conv *conversation.Conversation) Invocation {
	arg, status := conv.Arguments.First()
	inv := Invocation{Argument: arg, Status: status}
	if conv.Dialogflow != nil {
		inv.Parameters = conv.Dialogflow.Parameters
	} else {
		inv.Input = conv.Input.Text
	}
	return inv
}
