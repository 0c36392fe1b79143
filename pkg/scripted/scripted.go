// Package scripted builds an intent table from a YAML definition. Every
// action maps to a templated reply, a redirect or a followup event.
package scripted

import (
	"bytes"
	"context"
	"io"
	"os"
	"sort"
	"strconv"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/go-go-golems/fulfillment/pkg/conversation"
	"github.com/go-go-golems/fulfillment/pkg/intents"
	"github.com/go-go-golems/fulfillment/pkg/responses"
	"github.com/go-go-golems/fulfillment/pkg/security"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// App is a scripted application definition.
type App struct {
	Name string `yaml:"name"`
	// Data and Storage are the default session bags of every turn.
	Data     map[string]any    `yaml:"data"`
	Storage  map[string]any    `yaml:"storage"`
	Fallback *Reply            `yaml:"fallback"`
	Actions  map[string]*Reply `yaml:"actions"`
	Links    LinkPolicy        `yaml:"links"`
}

// LinkPolicy relaxes the checks on card and link-out URLs.
type LinkPolicy struct {
	AllowHTTP          bool `yaml:"allow_http"`
	AllowLocalNetworks bool `yaml:"allow_local_networks"`
}

// Card is rendered as a basic card.
type Card struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Text        string `yaml:"text"`
	ImageURL    string `yaml:"image_url"`
	ImageAlt    string `yaml:"image_alt"`
	ButtonTitle string `yaml:"button_title"`
	ButtonURL   string `yaml:"button_url"`
}

type LinkOut struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type Followup struct {
	Event      string         `yaml:"event"`
	Parameters map[string]any `yaml:"parameters"`
}

// Reply describes what an action does. Ask and Close are templates
// rendered with the turn as data; Set and Store values are templates too.
type Reply struct {
	Redirect    string            `yaml:"redirect"`
	Ask         string            `yaml:"ask"`
	Close       string            `yaml:"close"`
	Confirm     string            `yaml:"confirm"`
	Suggestions []string          `yaml:"suggestions"`
	Card        *Card             `yaml:"card"`
	LinkOut     *LinkOut          `yaml:"link_out"`
	Increment   []string          `yaml:"increment"`
	Set         map[string]string `yaml:"set"`
	Store       map[string]string `yaml:"store"`
	// Followup is used on Dialogflow turns; other turns answer with Ask,
	// Close or Confirm, one of which is required.
	Followup *Followup `yaml:"followup"`

	text  *template.Template
	card  *template.Template
	set   map[string]*template.Template
	store map[string]*template.Template
}

// TurnData is the data templates are executed with.
type TurnData struct {
	Action     string
	Input      string
	Parameters map[string]any
	Argument   any
	Data       map[string]any
	Storage    map[string]any
	Locale     string
	Screen     bool
}

// LoadFile reads an app definition from a file.
func LoadFile(path string) (*App, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}

// Load decodes and compiles an app definition.
func Load(r io.Reader) (*App, error) {
	a := &App{}
	if err := yaml.NewDecoder(r).Decode(a); err != nil {
		return nil, errors.Wrap(err, "decode scripted app")
	}
	if err := a.compile(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) compile() error {
	if len(a.Actions) == 0 {
		return errors.New("scripted app has no actions")
	}
	opts := security.LinkOptions{AllowHTTP: a.Links.AllowHTTP, AllowLocalNetworks: a.Links.AllowLocalNetworks}
	for _, name := range a.actionNames() {
		r := a.Actions[name]
		if err := r.compile(name); err != nil {
			return errors.Wrapf(err, "action %s", name)
		}
		if err := r.checkLinks(opts); err != nil {
			return errors.Wrapf(err, "action %s", name)
		}
	}
	if a.Fallback != nil {
		if a.Fallback.Redirect != "" {
			return errors.New("fallback cannot redirect")
		}
		if err := a.Fallback.compile("fallback"); err != nil {
			return errors.Wrap(err, "fallback")
		}
		if err := a.Fallback.checkLinks(opts); err != nil {
			return errors.Wrap(err, "fallback")
		}
	}
	return nil
}

func (r *Reply) checkLinks(opts security.LinkOptions) error {
	var urls []string
	if c := r.Card; c != nil {
		urls = append(urls, c.ImageURL, c.ButtonURL)
	}
	if r.LinkOut != nil {
		urls = append(urls, r.LinkOut.URL)
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := security.CheckLink(u, opts); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) actionNames() []string {
	names := make([]string, 0, len(a.Actions))
	for k := range a.Actions {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func parse(name, src string) (*template.Template, error) {
	return template.New(name).Funcs(sprig.TxtFuncMap()).Parse(src)
}

func (r *Reply) compile(name string) error {
	if r == nil {
		return errors.New("empty reply")
	}
	if r.Redirect != "" {
		if r.Ask != "" || r.Close != "" || r.Followup != nil {
			return errors.New("redirect cannot be combined with a reply")
		}
		return nil
	}
	if r.Ask != "" && r.Close != "" {
		return errors.New("ask and close are exclusive")
	}
	if r.Ask == "" && r.Close == "" && r.Confirm == "" {
		if r.Followup != nil {
			return errors.New("followup needs ask, close or confirm to answer actions sdk turns")
		}
		return errors.New("reply needs ask, close or confirm")
	}
	if r.Followup != nil && r.Followup.Event == "" {
		return errors.New("followup needs an event")
	}

	src := r.Ask
	if r.Close != "" {
		src = r.Close
	}
	var err error
	if r.text, err = parse(name, src); err != nil {
		return errors.Wrap(err, "parse reply")
	}
	if r.Card != nil {
		if r.card, err = parse(name+".card", r.Card.Text); err != nil {
			return errors.Wrap(err, "parse card")
		}
	}
	if r.set, err = parseAll(name+".set", r.Set); err != nil {
		return err
	}
	if r.store, err = parseAll(name+".store", r.Store); err != nil {
		return err
	}
	return nil
}

func parseAll(prefix string, m map[string]string) (map[string]*template.Template, error) {
	ret := make(map[string]*template.Template, len(m))
	for k, src := range m {
		t, err := parse(prefix+"."+k, src)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", k)
		}
		ret[k] = t
	}
	return ret, nil
}

// Table returns the intent table of the app.
func (a *App) Table() *intents.Table {
	t := intents.NewTable()
	for _, name := range a.actionNames() {
		r := a.Actions[name]
		if r.Redirect != "" {
			t.Redirect(name, r.Redirect)
			continue
		}
		t.Handle(name, r.Handler())
	}
	if a.Fallback != nil {
		t.Fallback(a.Fallback.Handler())
	}
	return t
}

// Initializer returns the default session state; the bags are cloned per
// turn by the conversation decoder.
func (a *App) Initializer() func() conversation.InitialState {
	return func() conversation.InitialState {
		return conversation.InitialState{Data: a.Data, Storage: a.Storage}
	}
}

// Handler returns the intent handler running the reply.
func (r *Reply) Handler() intents.Handler {
	return func(_ context.Context, conv *conversation.Conversation, inv intents.Invocation) error {
		if conv.Data == nil {
			conv.Data = map[string]any{}
		}
		for _, k := range r.Increment {
			n, err := toNumber(conv.Data[k])
			if err != nil {
				return errors.Wrapf(err, "increment %s", k)
			}
			conv.Data[k] = n + 1
		}

		td := &TurnData{
			Action:     intents.ActionOf(conv),
			Input:      inv.Input,
			Parameters: inv.Parameters,
			Argument:   inv.Argument,
			Data:       conv.Data,
			Storage:    conv.User.Storage,
			Locale:     conv.User.Locale,
			Screen:     conv.Screen(),
		}

		for _, k := range sortedKeys(r.set) {
			v, err := render(r.set[k], td)
			if err != nil {
				return err
			}
			conv.Data[k] = v
		}
		if len(r.store) > 0 {
			if conv.User.Storage == nil {
				conv.User.Storage = map[string]any{}
				td.Storage = conv.User.Storage
			}
			for _, k := range sortedKeys(r.store) {
				v, err := render(r.store[k], td)
				if err != nil {
					return err
				}
				conv.User.Storage[k] = v
			}
		}

		if r.Followup != nil {
			if conv.Dialogflow != nil {
				return conv.Followup(r.Followup.Event, r.Followup.Parameters)
			}
			log.Debug().Str("action", td.Action).Str("event", r.Followup.Event).Msg("followup skipped outside dialogflow")
		}

		fragments, err := r.fragments(td)
		if err != nil {
			return err
		}
		if len(fragments) == 0 {
			return errors.Errorf("reply for %q rendered no response", td.Action)
		}
		if r.Close != "" {
			return conv.Close(fragments...)
		}
		return conv.Ask(fragments...)
	}
}

func (r *Reply) fragments(td *TurnData) ([]responses.Fragment, error) {
	var ret []responses.Fragment
	text, err := render(r.text, td)
	if err != nil {
		return nil, err
	}
	if text != "" {
		ret = append(ret, responses.Text(text))
	}
	if c := r.Card; c != nil {
		body, err := render(r.card, td)
		if err != nil {
			return nil, err
		}
		card := &responses.BasicCard{Title: c.Title, Subtitle: c.Subtitle, FormattedText: body}
		if c.ImageURL != "" {
			card.Image = &responses.Image{URL: c.ImageURL, AccessibilityText: c.ImageAlt}
		}
		if c.ButtonURL != "" {
			card.Buttons = []responses.Button{responses.NewButton(c.ButtonTitle, c.ButtonURL)}
		}
		ret = append(ret, card)
	}
	if len(r.Suggestions) > 0 {
		ret = append(ret, responses.NewSuggestions(r.Suggestions...))
	}
	if r.LinkOut != nil {
		ret = append(ret, responses.NewLinkOutSuggestion(r.LinkOut.Name, r.LinkOut.URL))
	}
	if r.Confirm != "" {
		ret = append(ret, &responses.Confirmation{Prompt: r.Confirm})
	}
	return ret, nil
}

func render(t *template.Template, td *TurnData) (string, error) {
	if t == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, td); err != nil {
		return "", errors.Wrapf(err, "render %s", t.Name())
	}
	return buf.String(), nil
}

func sortedKeys(m map[string]*template.Template) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// toNumber reads a counter; JSON round trips turn integers into float64.
func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, errors.Errorf("%q is not a number", n)
		}
		return f, nil
	}
	return 0, errors.Errorf("%T is not a number", v)
}
