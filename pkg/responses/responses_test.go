package responses

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentKinds(t *testing.T) {
	tests := []struct {
		fragment Fragment
		kind     FragmentKind
	}{
		{Text("hi"), FragmentKindText},
		{NewSimpleResponse("hi"), FragmentKindSimple},
		{&Confirmation{Prompt: "sure?"}, FragmentKindHelper},
		{&List{}, FragmentKindHelper},
		{NewRichResponse(), FragmentKindRichResponse},
		{NewSuggestions("a"), FragmentKindSuggestions},
		{NewLinkOutSuggestion("site", "https://example.com"), FragmentKindLinkOut},
		{&BasicCard{Title: "t"}, FragmentKindDisplay},
		{&HTMLResponse{URL: "https://example.com"}, FragmentKindDisplay},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.fragment.Kind())
		})
	}
	assert.Equal(t, "unknown", FragmentKind(99).String())
}

func TestHelperSoloFlags(t *testing.T) {
	solo := []Helper{
		&Permission{Permissions: []string{PermissionName}},
		&SignIn{},
		&Confirmation{},
		&DateTime{},
		&Place{},
		&NewSurface{},
	}
	for _, h := range solo {
		assert.True(t, h.Solo(), "%T", h)
	}
	for _, h := range []Helper{&List{}, &Carousel{}} {
		assert.False(t, h.Solo(), "%T", h)
	}
}

func TestHelpersAreFragmentsOnlyByPointer(t *testing.T) {
	fragmentType := reflect.TypeOf((*Fragment)(nil)).Elem()
	for _, v := range []any{
		Permission{}, UpdatePermission{}, SignIn{}, Confirmation{}, DateTime{}, Place{},
		DeliveryAddress{}, TransactionRequirements{}, TransactionDecision{}, NewSurface{},
		RegisterUpdate{}, List{}, Carousel{},
	} {
		typ := reflect.TypeOf(v)
		assert.False(t, typ.Implements(fragmentType), "%s value must not be a fragment", typ)
		assert.True(t, reflect.PointerTo(typ).Implements(fragmentType), "*%s must be a fragment", typ)
	}
}

func TestExpectedIntentShapes(t *testing.T) {
	ei := (&Permission{Context: "To greet you", Permissions: []string{PermissionName}}).ExpectedIntent()
	assert.Equal(t, IntentPermission, ei.Intent)
	assert.Equal(t, typePrefix+"PermissionValueSpec", ei.InputValueData["@type"])
	assert.Equal(t, "To greet you", ei.InputValueData["optContext"])

	ei = (&SignIn{}).ExpectedIntent()
	assert.NotContains(t, ei.InputValueData, "optContext")

	ei = (&DateTime{DatePrompt: "Which day?"}).ExpectedIntent()
	assert.Equal(t, map[string]any{"requestDateText": "Which day?"}, ei.InputValueData["dialogSpec"])

	ei = (&List{Title: "Pick", Items: []OptionItem{{OptionInfo: OptionInfo{Key: "a"}, Title: "A"}}}).ExpectedIntent()
	assert.Equal(t, IntentOption, ei.Intent)
	b, err := json.Marshal(ei)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"intent": "actions.intent.OPTION",
		"inputValueData": {
			"@type": "type.googleapis.com/google.actions.v2.OptionValueSpec",
			"listSelect": {"title": "Pick", "items": [{"optionInfo": {"key": "a"}, "title": "A"}]}
		}
	}`, string(b))
}

func TestRichResponseBuilder(t *testing.T) {
	r := NewRichResponse().
		AddText("one").
		AddItem(&BasicCard{Title: "card"}, &Image{URL: "u", AccessibilityText: "alt"}).
		AddSuggestions(NewSuggestions("a", "b")).
		AddSuggestions(nil).
		SetLinkOut(NewLinkOutSuggestion("site", "https://example.com"))

	require.Len(t, r.Items, 3)
	assert.True(t, r.HasSimple())
	assert.Equal(t, "u", r.Items[2].BasicCard.Image.URL, "an image becomes a card")
	assert.Equal(t, []Suggestion{{Title: "a"}, {Title: "b"}}, r.Suggestions)
	assert.False(t, r.IsEmpty())

	c := r.Clone()
	c.Items = append(c.Items, RichResponseItem{})
	c.Suggestions[0].Title = "changed"
	assert.Len(t, r.Items, 3)
	assert.Equal(t, "a", r.Suggestions[0].Title)

	var nilRich *RichResponse
	assert.True(t, nilRich.IsEmpty())
	assert.False(t, nilRich.HasSimple())
	assert.Nil(t, nilRich.Clone())
}

func TestDisplayRequiresSimple(t *testing.T) {
	assert.True(t, (&BasicCard{}).RequiresSimple())
	assert.True(t, (&MediaObject{}).RequiresSimple())
	assert.False(t, (&HTMLResponse{}).RequiresSimple())

	table := NewTable([]string{"a", "b"}, []string{"1", "2"})
	require.Len(t, table.ColumnProperties, 2)
	assert.Equal(t, "2", table.Rows[0].Cells[1].Text)
}
