// internal/audit/trail.go
// Package audit appends review events to an Elasticsearch index so support
// tooling can reconstruct who decided what and when. Indexing is best-effort
// and never blocks or fails a review.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"ridehail-platform/internal/common/config"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/workflow"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// Trail indexes review events. A disabled trail drops everything silently.
type Trail struct {
	esClient *elasticsearch.Client
	index    string
	enabled  bool
	logger   logger.Logger
}

func NewTrail(cfg config.AuditConfig, esClient *elasticsearch.Client, log logger.Logger) *Trail {
	return &Trail{
		esClient: esClient,
		index:    cfg.Index,
		enabled:  cfg.Enabled && esClient != nil,
		logger:   log.WithFields(map[string]interface{}{"component": "audit-trail"}),
	}
}

// RecordReview writes one event document. Failures are logged with the event
// payload so the trail can be backfilled by hand if needed.
func (t *Trail) RecordReview(ctx context.Context, event workflow.ReviewEvent) {
	if !t.enabled {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		t.logger.Error("audit event marshal failed", map[string]interface{}{
			"applicationId": event.ApplicationID,
			"error":         err.Error(),
		})
		return
	}

	req := esapi.IndexRequest{
		Index:      t.index,
		DocumentID: fmt.Sprintf("%s-%s", event.ApplicationID, uuid.New().String()[:8]),
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, t.esClient)
	if err != nil {
		t.logger.Error("audit event index failed", map[string]interface{}{
			"applicationId": event.ApplicationID,
			"action":        event.Action,
			"payload":       string(body),
			"error":         err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		t.logger.Error("audit event rejected by elasticsearch", map[string]interface{}{
			"applicationId": event.ApplicationID,
			"action":        event.Action,
			"payload":       string(body),
			"status":        res.Status(),
		})
		return
	}

	t.logger.Debug("audit event indexed", map[string]interface{}{
		"applicationId": event.ApplicationID,
		"action":        event.Action,
	})
}
