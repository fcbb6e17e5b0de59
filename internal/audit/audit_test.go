// internal/audit/audit_test.go
package audit

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth-assistant/internal/common/logger"
	"growth-assistant/internal/models"
)

type fakeTransport struct {
	fn func(*http.Request) (*http.Response, error)
}

func (f fakeTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	return f.fn(r)
}

func esResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"X-Elastic-Product": []string{"Elasticsearch"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestIndexer(t *testing.T, fn func(*http.Request) (*http.Response, error)) *Indexer {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Transport: fakeTransport{fn: fn},
	})
	require.NoError(t, err)
	return NewIndexer(client, "notification-logs", logger.NewNoOpLogger())
}

func TestIndexWritesDocumentByLogID(t *testing.T) {
	var gotPath string
	var gotBody string
	idx := newTestIndexer(t, func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		return esResponse(http.StatusCreated, `{"result":"created"}`), nil
	})

	phone := "62812"
	err := idx.Index(context.Background(), &models.NotificationLog{
		ID:           "log-1",
		VendorID:     "v1",
		VendorPhone:  &phone,
		Message:      "hello",
		WhatsAppSent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "/notification-logs/_doc/log-1", gotPath)
	assert.Contains(t, gotBody, `"vendorId":"v1"`)
	assert.Contains(t, gotBody, `"whatsappSent":true`)
}

func TestIndexErrorStatus(t *testing.T) {
	idx := newTestIndexer(t, func(r *http.Request) (*http.Response, error) {
		return esResponse(http.StatusInternalServerError, `{"error":"boom"}`), nil
	})

	err := idx.Index(context.Background(), &models.NotificationLog{ID: "log-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index log document")
}

func TestNewIndexerDefaultIndex(t *testing.T) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Transport: fakeTransport{fn: func(r *http.Request) (*http.Response, error) {
			return esResponse(http.StatusOK, "{}"), nil
		}},
	})
	require.NoError(t, err)
	idx := NewIndexer(client, "", logger.NewNoOpLogger())
	assert.Equal(t, "notification-logs", idx.index)
}
