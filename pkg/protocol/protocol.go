// Package protocol detects which platform family and protocol version sent a turn.
package protocol

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-go-golems/fulfillment/pkg/protocol/actionssdk"
	"github.com/pkg/errors"
)

// Family is a platform family.
type Family string

const (
	FamilyActionsSDK Family = "actions-sdk"
	FamilyDialogflow Family = "dialogflow"
)

// Version is a protocol version within a family.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	}
	return "unknown"
}

// HeaderAPIVersion is sent by the Actions SDK with the conversation protocol version.
const HeaderAPIVersion = "Google-Assistant-API-Version"

// ErrUnknownFormat is returned when a body matches none of the supported shapes.
var ErrUnknownFormat = errors.New("unknown request format")

// Metadata identifies the wire shape of one turn.
type Metadata struct {
	Family  Family
	Version Version
}

func (m Metadata) String() string {
	return string(m.Family) + "/" + m.Version.String()
}

// Detect inspects headers and body and returns the wire shape.
// Dialogflow v2 carries queryResult, v1 carries result; the Actions SDK carries
// inputs and is v1 when the version header says so or keys are snake_case.
func Detect(headers http.Header, body []byte) (Metadata, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Metadata{}, errors.Wrap(err, "decode request body")
	}
	if _, ok := raw["queryResult"]; ok {
		return Metadata{Family: FamilyDialogflow, Version: V2}, nil
	}
	if _, ok := raw["result"]; ok {
		return Metadata{Family: FamilyDialogflow, Version: V1}, nil
	}
	if _, ok := raw["inputs"]; ok {
		v := V2
		if strings.EqualFold(strings.TrimSpace(headers.Get(HeaderAPIVersion)), "v1") || actionssdk.LooksLikeV1(raw) {
			v = V1
		}
		return Metadata{Family: FamilyActionsSDK, Version: v}, nil
	}
	return Metadata{}, ErrUnknownFormat
}
