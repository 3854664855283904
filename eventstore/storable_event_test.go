package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

//nolint:funlen
func Test_BuildStorableEvent_ErrorCases(t *testing.T) {
	validTime := time.Now()
	validPayloadJSON := []byte(`{"AccountID": "4f7a"}`)
	validMetadataJSON := []byte(`{"MessageID": "b1c2"}`)

	tests := []struct {
		name         string
		eventType    string
		payloadJSON  []byte
		metadataJSON []byte
		expectedErr  error
	}{
		{
			name:         "empty event type",
			eventType:    "",
			payloadJSON:  validPayloadJSON,
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrEmptyEventType,
		},
		{
			name:         "invalid payload JSON",
			eventType:    "FundsDeposited",
			payloadJSON:  []byte(`{"invalid": json}`),
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "invalid metadata JSON",
			eventType:    "FundsDeposited",
			payloadJSON:  validPayloadJSON,
			metadataJSON: []byte(`{"invalid": json}`),
			expectedErr:  ErrInvalidMetadataJSON,
		},
		{
			name:         "empty payload JSON",
			eventType:    "FundsDeposited",
			payloadJSON:  []byte(``),
			metadataJSON: validMetadataJSON,
			expectedErr:  ErrInvalidPayloadJSON,
		},
		{
			name:         "nil metadata JSON",
			eventType:    "FundsDeposited",
			payloadJSON:  validPayloadJSON,
			metadataJSON: nil,
			expectedErr:  ErrInvalidMetadataJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildStorableEvent(tt.eventType, validTime, tt.payloadJSON, tt.metadataJSON)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_BuildStorableEvent_Success(t *testing.T) {
	// arrange
	occurredAt := time.Unix(0, 0).UTC()
	payloadJSON := []byte(`{"AccountID": "4f7a", "Amount": "12.50"}`)
	metadataJSON := []byte(`{"MessageID": "b1c2"}`)

	// act
	event, err := BuildStorableEvent("FundsDeposited", occurredAt, payloadJSON, metadataJSON)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "FundsDeposited", event.EventType)
	assert.Equal(t, occurredAt, event.OccurredAt)
	assert.Equal(t, payloadJSON, event.PayloadJSON)
	assert.Equal(t, metadataJSON, event.MetadataJSON)
}

func Test_BuildStorableEventWithEmptyMetadata(t *testing.T) {
	// act
	event, err := BuildStorableEventWithEmptyMetadata("AccountClosed", time.Now(), []byte(`{}`))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []byte("{}"), event.MetadataJSON)
}

func Test_ValidateAppendInput(t *testing.T) {
	assert.ErrorIs(t, ValidateAppendInput("", 0), ErrEmptyStreamID)
	assert.ErrorIs(t, ValidateAppendInput("stream", -1), ErrNegativeExpectedVersion)
	assert.NoError(t, ValidateAppendInput("stream", 0))
	assert.NoError(t, ValidateAppendInput("stream", 7))
}
