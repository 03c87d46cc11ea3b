package amqp

import (
	"encoding/json"
	"time"
)

// RecordSyncMessage asks the worker to export one record. It carries
// only the id; the worker fetches the full record from the store, so a
// record deleted before the message is handled is simply skipped.
type RecordSyncMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(id int64) *RecordSyncMessage {
	return &RecordSyncMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
