package arguments

import (
	"testing"

	"github.com/go-go-golems/fulfillment/pkg/protocol/actionssdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }
func boolean(b bool) *bool { return &b }

func TestParseBuildsParallelViews(t *testing.T) {
	status := &Status{Code: 7, Message: "denied"}
	args := Parse([]actionssdk.Argument{
		{Name: "text", RawText: str("hello"), TextValue: str("hello")},
		{Name: NameConfirmation, BoolValue: boolean(true), TextValue: str("true")},
		{Name: NameSignIn, Status: status, Extension: map[string]any{"status": "CANCELLED"}},
	})

	require.Equal(t, 3, args.Len())
	assert.Equal(t, []any{"hello", true, map[string]any{"status": "CANCELLED"}}, args.List)

	v, ok := args.Get(NameConfirmation)
	require.True(t, ok)
	assert.Equal(t, true, v)

	assert.Same(t, status, args.Status(NameSignIn))
	assert.Nil(t, args.Status("text"))
	assert.Equal(t, "hello", *args.Raw["text"].TextValue)
}

func TestValueGivesTextLowestPriority(t *testing.T) {
	assert.Equal(t, int64(42), Value(actionssdk.Argument{Name: "n", IntValue: str("42"), TextValue: str("forty two")}))
	assert.Equal(t, "raw", Value(actionssdk.Argument{Name: "t", RawText: str("raw"), TextValue: str("text")}))
	assert.Equal(t, "text", Value(actionssdk.Argument{Name: "t", TextValue: str("text")}))
	assert.Nil(t, Value(actionssdk.Argument{Name: "empty"}))

	dt := &actionssdk.DateTime{Date: &actionssdk.Date{Year: 2024, Month: 1, Day: 2}}
	assert.Same(t, dt, Value(actionssdk.Argument{Name: NameDateTime, DatetimeValue: dt, TextValue: str("2024-01-02")}))
}

func TestPermissionFallsBackToBool(t *testing.T) {
	assert.Equal(t, false, Value(actionssdk.Argument{Name: NamePermission, TextValue: str("true")}))
	assert.Equal(t, true, Value(actionssdk.Argument{Name: NamePermission, BoolValue: boolean(true), TextValue: str("true")}))
	assert.Equal(t, false, Value(actionssdk.Argument{Name: NamePermission}))
	assert.Equal(t, "yes", Value(actionssdk.Argument{Name: NamePermission, RawText: str("yes"), TextValue: str("true")}))
}

func TestFirst(t *testing.T) {
	v, s := Parse(nil).First()
	assert.Nil(t, v)
	assert.Nil(t, s)

	status := &Status{Code: 1}
	v, s = Parse([]actionssdk.Argument{{Name: NameOption, TextValue: str("key-1"), Status: status}}).First()
	assert.Equal(t, "key-1", v)
	assert.Same(t, status, s)
}
