package common

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gachaCardBot/models"
)

// NewCorrelationID tags all audit events of one logical operation.
func NewCorrelationID() string {
	return uuid.NewString()
}

// RecordEvent appends one audit event. Fire-and-forget: a failed append is
// logged and swallowed, it never aborts or rolls back the economic
// transaction that produced it.
func RecordEvent(db *gorm.DB, playerID uint, eventType models.EventType, correlationID string, context map[string]any) {
	payload, err := json.Marshal(context)
	if err != nil {
		log.Printf("event %s for player %d: marshal context: %v", eventType, playerID, err)
		payload = []byte("{}")
	}
	event := models.EventLog{
		PlayerID:      playerID,
		EventType:     eventType,
		Context:       string(payload),
		CorrelationID: correlationID,
	}
	if err := db.Create(&event).Error; err != nil {
		log.Printf("event %s for player %d: append failed: %v", eventType, playerID, err)
	}
}

// LogError persists an error to the error log and echoes it to stderr.
func LogError(db *gorm.DB, source string, err error) {
	log.Printf("%s: %v", source, err)
	errLog := models.ErrorLog{
		Source:  source,
		Message: fmt.Sprintf("%v", err),
	}
	db.Create(&errLog)
}
