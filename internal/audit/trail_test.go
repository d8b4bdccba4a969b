// internal/audit/trail_test.go
package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ridehail-platform/internal/common/config"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/workflow"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedIndexCall struct {
	path string
	body map[string]interface{}
}

// fakeElasticsearch stands in for a live cluster. The product header is
// required or the v8 client refuses to talk to it.
func fakeElasticsearch(t *testing.T, status int, calls *[]capturedIndexCall) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		if r.Method == http.MethodPut || r.Method == http.MethodPost {
			raw, _ := io.ReadAll(r.Body)
			var doc map[string]interface{}
			_ = json.Unmarshal(raw, &doc)
			*calls = append(*calls, capturedIndexCall{path: r.URL.Path, body: doc})
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func auditConfig(enabled bool) config.AuditConfig {
	return config.AuditConfig{Enabled: enabled, Index: "driver-application-reviews"}
}

func sampleEvent() workflow.ReviewEvent {
	passed := true
	return workflow.ReviewEvent{
		ApplicationID: "app-1",
		Action:        "complete",
		Status:        "approved",
		ReviewedBy:    "admin-1",
		ReportID:      "bgc-1",
		Passed:        &passed,
		OccurredAt:    "2026-08-31T10:00:00Z",
	}
}

func TestTrail_RecordReview_IndexesEvent(t *testing.T) {
	var calls []capturedIndexCall
	trail := NewTrail(auditConfig(true), fakeElasticsearch(t, http.StatusCreated, &calls), logger.NewTestLogger(t))

	trail.RecordReview(context.Background(), sampleEvent())

	require.Len(t, calls, 1)
	assert.True(t, strings.HasPrefix(calls[0].path, "/driver-application-reviews/"))
	assert.Equal(t, "app-1", calls[0].body["applicationId"])
	assert.Equal(t, "complete", calls[0].body["action"])
	assert.Equal(t, "approved", calls[0].body["status"])
	assert.Equal(t, true, calls[0].body["passed"])
}

func TestTrail_RecordReview_DisabledDoesNothing(t *testing.T) {
	var calls []capturedIndexCall
	trail := NewTrail(auditConfig(false), fakeElasticsearch(t, http.StatusCreated, &calls), logger.NewTestLogger(t))

	trail.RecordReview(context.Background(), sampleEvent())

	assert.Empty(t, calls)
}

func TestTrail_RecordReview_NilClientDoesNothing(t *testing.T) {
	trail := NewTrail(auditConfig(true), nil, logger.NewTestLogger(t))

	assert.NotPanics(t, func() {
		trail.RecordReview(context.Background(), sampleEvent())
	})
}

func TestTrail_RecordReview_ServerErrorIsSwallowed(t *testing.T) {
	var calls []capturedIndexCall
	trail := NewTrail(auditConfig(true), fakeElasticsearch(t, http.StatusInternalServerError, &calls), logger.NewTestLogger(t))

	assert.NotPanics(t, func() {
		trail.RecordReview(context.Background(), sampleEvent())
	})
}
