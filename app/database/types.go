package database

import (
	"encoding/json"
	"time"
)

type Run struct {
	ID          string
	Profile     string
	Status      string
	CreatedAt   time.Time
	ItemCount   int
	TargetCount int
	Failures    []string
	Payload     json.RawMessage // Full pipeline response as returned to the caller
}
