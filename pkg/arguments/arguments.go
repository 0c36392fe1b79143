// Package arguments normalizes the typed argument records of a turn's primary
// input into positional and by-name lookup views.
package arguments

import (
	"strconv"

	"github.com/go-go-golems/fulfillment/pkg/protocol/actionssdk"
)

// Status is the status attached to a helper argument.
type Status = actionssdk.Status

// Well known argument names.
const (
	NamePermission   = "PERMISSION"
	NameSignIn       = "SIGN_IN"
	NameConfirmation = "CONFIRMATION"
	NameDateTime     = "DATETIME"
	NamePlace        = "PLACE"
	NameOption       = "OPTION"
	NameNewSurface   = "NEW_SURFACE"
	NameText         = "text"
)

// Arguments holds the parsed views of a turn's argument records.
type Arguments struct {
	// List holds the interesting value of every record, in original order.
	List []any
	// Input maps argument name to its interesting value.
	Input map[string]any
	// Statuses maps argument name to the record's status, when present.
	Statuses map[string]*Status
	// Raw maps argument name to the original record.
	Raw map[string]actionssdk.Argument

	statusList []*Status
}

// Parse builds the lookup views for the given records.
func Parse(records []actionssdk.Argument) Arguments {
	a := Arguments{
		List:     make([]any, 0, len(records)),
		Input:    make(map[string]any, len(records)),
		Statuses: make(map[string]*Status, len(records)),
		Raw:      make(map[string]actionssdk.Argument, len(records)),
	}
	for _, r := range records {
		v := Value(r)
		a.List = append(a.List, v)
		a.statusList = append(a.statusList, r.Status)
		if r.Name == "" {
			continue
		}
		a.Input[r.Name] = v
		if r.Status != nil {
			a.Statuses[r.Name] = r.Status
		}
		a.Raw[r.Name] = r
	}
	return a
}

// Get returns the value of a named argument.
func (a Arguments) Get(name string) (any, bool) {
	v, ok := a.Input[name]
	return v, ok
}

// Status returns the status of a named argument.
func (a Arguments) Status(name string) *Status {
	return a.Statuses[name]
}

// Len is the number of records.
func (a Arguments) Len() int {
	return len(a.List)
}

// First returns the first positional value and status, both nil when there are no records.
func (a Arguments) First() (any, *Status) {
	if len(a.List) == 0 {
		return nil, nil
	}
	return a.List[0], a.statusList[0]
}

// Value returns the interesting value of a record: the first present payload
// field, with the raw text after the typed fields and the text value last.
// The PERMISSION argument falls back to false instead of its text value,
// since some platforms only send textValue for it.
func Value(r actionssdk.Argument) any {
	if v, ok := typedValue(r); ok {
		return v
	}
	if r.RawText != nil {
		return *r.RawText
	}
	if r.Name == NamePermission {
		return false
	}
	if r.TextValue != nil {
		return *r.TextValue
	}
	return nil
}

func typedValue(r actionssdk.Argument) (any, bool) {
	switch {
	case r.IntValue != nil:
		if i, err := strconv.ParseInt(*r.IntValue, 10, 64); err == nil {
			return i, true
		}
		return *r.IntValue, true
	case r.FloatValue != nil:
		return *r.FloatValue, true
	case r.BoolValue != nil:
		return *r.BoolValue, true
	case r.DatetimeValue != nil:
		return r.DatetimeValue, true
	case r.PlaceValue != nil:
		return r.PlaceValue, true
	case r.Extension != nil:
		return r.Extension, true
	case r.StructuredValue != nil:
		return r.StructuredValue, true
	}
	return nil, false
}
