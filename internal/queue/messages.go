package queue

import (
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
)

// AnalyzeMessage requests the full analysis of one uploaded document. Force
// bypasses the cached result and re-runs every analyzer.
type AnalyzeMessage struct {
	DocumentID string `json:"document_id"`
	Force      bool   `json:"force"`
}

// PublishAnalyze enqueues one analysis job.
func PublishAnalyze(ch *amqp091.Channel, msg AnalyzeMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return PublishFIFO(ch, AnalysisQueue, body)
}
