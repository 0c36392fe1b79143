package state

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// storageEnvelope is the wire form of user storage.
type storageEnvelope struct {
	Data map[string]any `json:"data"`
}

// DecodeUserStorage unwraps the {"data": {...}} envelope of a userStorage field.
func DecodeUserStorage(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var env storageEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, errors.Wrapf(ErrMalformedState, "user storage: %v", err)
	}
	if env.Data == nil {
		env.Data = map[string]any{}
	}
	return env.Data, nil
}

// EncodeUserStorage wraps storage into its envelope.
func EncodeUserStorage(storage map[string]any) (string, error) {
	if storage == nil {
		storage = map[string]any{}
	}
	return Serialize(storageEnvelope{Data: storage})
}

// StorageEncoder diffs user storage against the value received this turn.
// Unlike Encoder there is no default side: a default equal to the current
// value would suppress a clear, and the platform keeps whatever is not
// overwritten, so clearing storage must be written back.
type StorageEncoder struct {
	incoming string
}

// NewStorageEncoder snapshots the decoded incoming storage.
func NewStorageEncoder(incoming map[string]any) (*StorageEncoder, error) {
	in, err := EncodeUserStorage(incoming)
	if err != nil {
		return nil, err
	}
	return &StorageEncoder{incoming: in}, nil
}

// Encode returns the enveloped storage and whether it differs from the incoming value.
func (e *StorageEncoder) Encode(current map[string]any) (string, bool, error) {
	out, err := EncodeUserStorage(current)
	if err != nil {
		return "", false, err
	}
	return out, out != e.incoming, nil
}
