package logging

import (
	"encoding/json"
	"log"
	"time"
)

// Service is stamped on every line.
var Service = "ms-pedido"

type Fields struct {
	OrderID     string `json:"order_id,omitempty"`
	OrderNumber int    `json:"order_number,omitempty"`
	Queue       string `json:"queue,omitempty"`
	Step        string `json:"step,omitempty"`
	Status      string `json:"status,omitempty"`
	DurationMS  int64  `json:"duration_ms,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

func Log(fields Fields) {
	log.Print(Line(fields))
}

type line struct {
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Fields
}

// Line renders fields as a single JSON object.
func Line(fields Fields) string {
	data, err := json.Marshal(line{
		Service:   Service,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Fields:    fields,
	})
	if err != nil {
		return `{"service":"` + Service + `","status":"log_error"}`
	}
	return string(data)
}
