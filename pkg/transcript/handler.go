package transcript

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/fulfillment/pkg/events"
	"github.com/rs/zerolog/log"
)

// Handler returns a watermill handler recording turn events into store.
// Undecodable messages are logged and dropped.
func Handler(store *SQLiteStore) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		e, err := events.NewTurnEventFromJSON(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping undecodable turn event")
			return nil
		}
		return store.Record(msg.Context(), e)
	}
}
