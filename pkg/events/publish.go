package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

// MetadataSequenceNumber is set on every message published by a PublisherManager.
const MetadataSequenceNumber = "sequence_number"

// PublisherManager distributes messages to a set of publishers, each
// subscribed with a topic. Every outgoing message carries a sequence number
// in the order Publish handled it.
type PublisherManager struct {
	Publishers     map[string][]message.Publisher
	sequenceNumber uint64
	mutex          sync.Mutex
}

func NewPublisherManager() *PublisherManager {
	return &PublisherManager{
		Publishers: make(map[string][]message.Publisher),
	}
}

func (s *PublisherManager) SubscribePublisher(topic string, pub message.Publisher) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Publishers[topic] = append(s.Publishers[topic], pub)
}

// Publish serializes payload to JSON and sends it to every publisher.
// Failing publishers are logged and skipped.
func (s *PublisherManager) Publish(payload interface{}) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	seq := fmt.Sprintf("%d", s.sequenceNumber)
	s.sequenceNumber++

	for topic, pubs := range s.Publishers {
		for _, pub := range pubs {
			msg := message.NewMessage(watermill.NewUUID(), b)
			msg.Metadata.Set(MetadataSequenceNumber, seq)
			if err := pub.Publish(topic, msg); err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("failed to publish")
			}
		}
	}

	return nil
}

// PublishBlind publishes and only logs failures.
func (s *PublisherManager) PublishBlind(payload interface{}) {
	if err := s.Publish(payload); err != nil {
		log.Warn().Err(err).Msg("failed to publish")
	}
}
