package shell

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

// ErrMappingToEventMetadataFailed is returned when metadata conversion fails.
var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

// MessageID represents a unique message identifier.
type MessageID = string

// CausationID represents the ID of the message that caused this event.
type CausationID = string

// CorrelationID represents the ID correlating related events, e.g. all events of one transfer.
type CorrelationID = string

// EventMetadata contains event tracking information.
type EventMetadata struct {
	MessageID     MessageID
	CausationID   CausationID
	CorrelationID CorrelationID
}

// BuildEventMetadata creates EventMetadata from UUID values.
func BuildEventMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) EventMetadata {
	return EventMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// BuildRootEventMetadata creates EventMetadata for a message that starts a new causation chain.
func BuildRootEventMetadata(messageID uuid.UUID) EventMetadata {
	return BuildEventMetadata(messageID, messageID, messageID)
}

// EventMetadataFrom extracts EventMetadata from a StorableEvent.
func EventMetadataFrom(storableEvent eventstore.StorableEvent) (EventMetadata, error) {
	metadata := new(EventMetadata)
	err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, metadata)
	if err != nil {
		return EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return *metadata, nil
}

// ContainsMessage reports whether one of the storable events was appended with the given message id.
// Events with unreadable metadata are skipped.
func ContainsMessage(storableEvents eventstore.StorableEvents, messageID MessageID) bool {
	for _, storableEvent := range storableEvents {
		metadata, err := EventMetadataFrom(storableEvent)
		if err != nil {
			continue
		}

		if metadata.MessageID == messageID {
			return true
		}
	}

	return false
}
