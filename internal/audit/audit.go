// internal/audit/audit.go

// Package audit mirrors notification delivery logs to Elasticsearch so
// support staff can search them without touching the primary database.
// The mirror is best effort; Postgres remains the source of truth.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/models"
)

type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = "notification-logs"
	}
	return &Indexer{client: client, index: index, logger: log}
}

// Index writes one delivery log document keyed by its log id.
func (i *Indexer) Index(ctx context.Context, l *models.NotificationLog) error {
	body, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal log document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: l.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index log document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index log document: %s", res.Status())
	}

	i.logger.Debug("Delivery log indexed", map[string]interface{}{
		"log_id": l.ID,
		"index":  i.index,
	})
	return nil
}
