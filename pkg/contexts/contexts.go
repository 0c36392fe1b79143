// Package contexts tracks the Dialogflow contexts threaded through consecutive turns.
package contexts

import (
	"sort"
	"strings"
)

// The conversation data bag travels in a reserved context.
const (
	AppDataContext   = "_actions_on_google"
	AppDataLifespan  = 99
	AppDataParameter = "data"
)

const pathSeparator = "/contexts/"

// Context is a named, lifespan bounded parameter record. Lifespan 0 deletes it.
type Context struct {
	Name       string
	Lifespan   int
	Parameters map[string]any
}

// Set holds the contexts received this turn and the ones to send back.
type Set struct {
	session string
	input   map[string]Context
	output  map[string]Context
}

// NewSet indexes the inbound contexts by short name.
func NewSet(session string, inbound []Context) *Set {
	s := &Set{
		session: session,
		input:   make(map[string]Context, len(inbound)),
		output:  map[string]Context{},
	}
	for _, c := range inbound {
		c.Name = ShortName(c.Name)
		s.input[c.Name] = c
	}
	return s
}

// ShortName strips the session path of a v2 context name and lower cases it.
func ShortName(name string) string {
	if i := strings.LastIndex(name, pathSeparator); i >= 0 {
		name = name[i+len(pathSeparator):]
	}
	return strings.ToLower(name)
}

// Session returns the session path used to expand context names.
func (s *Set) Session() string {
	return s.session
}

// FullName expands a short name into a v2 resource name.
func (s *Set) FullName(name string) string {
	return s.session + pathSeparator + name
}

// Input returns an inbound context.
func (s *Set) Input(name string) (Context, bool) {
	c, ok := s.input[ShortName(name)]
	return c, ok
}

// Get returns the value a context will have next turn: a pending Set wins
// over the inbound context, and a deleted context is absent.
func (s *Set) Get(name string) (Context, bool) {
	name = ShortName(name)
	if c, ok := s.output[name]; ok {
		return c, c.Lifespan > 0
	}
	c, ok := s.input[name]
	return c, ok
}

// InputNames lists inbound context names in order.
func (s *Set) InputNames() []string {
	names := make([]string, 0, len(s.input))
	for n := range s.input {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Set schedules an outgoing context. A later call for the same name replaces it.
func (s *Set) Set(name string, lifespan int, params map[string]any) {
	name = ShortName(name)
	s.output[name] = Context{Name: name, Lifespan: lifespan, Parameters: params}
}

// Delete expires a context on the next turn.
func (s *Set) Delete(name string) {
	s.Set(name, 0, nil)
}

// Output returns the outgoing contexts sorted by name.
func (s *Set) Output() []Context {
	out := make([]Context, 0, len(s.output))
	for _, c := range s.output {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
