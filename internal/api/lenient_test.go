package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLenientWritesIgnoreStatus(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError} {
		server, got := captureServer(t, status, `{"message":"x"}`)
		lenient := newTestClient(server.URL).Mailboxes("123", "example.com").Lenient()

		assert.True(t, lenient.Add(context.Background(), "alice", map[string]string{"password": "x"}), status)
		assert.True(t, lenient.Edit(context.Background(), "alice", map[string]string{"size": "1"}), status)
		assert.True(t, lenient.Delete(context.Background(), "alice"), status)
		require.Len(t, *got, 3)
	}
}

func TestLenientWritesFailOnTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	lenient := newTestClient(baseURL).Mailboxes("123", "example.com").Lenient()
	assert.False(t, lenient.Add(context.Background(), "alice", nil))
	assert.False(t, lenient.Edit(context.Background(), "alice", nil))
	assert.False(t, lenient.Delete(context.Background(), "alice"))
	assert.Nil(t, lenient.List(context.Background()))
	assert.Nil(t, lenient.Show(context.Background(), "alice"))
}

func TestLenientReadsReturnDocument(t *testing.T) {
	server, _ := captureServer(t, http.StatusOK, `{"mailboxes":[{"name":"alice"}]}`)
	lenient := newTestClient(server.URL).Mailboxes("123", "example.com").Lenient()

	doc := lenient.List(context.Background())
	require.NotNil(t, doc)
	assert.Len(t, doc.Mailboxes(), 1)
}

func TestLenientReadsKeepFaultBody(t *testing.T) {
	body := `{"itemNotFoundFault":{"message":"Domain not found","code":404}}`
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		server, _ := captureServer(t, status, body)
		lenient := newTestClient(server.URL).Mailboxes("123", "example.com").Lenient()

		doc := lenient.List(context.Background())
		require.NotNil(t, doc, status)
		fault, ok := doc["itemNotFoundFault"].(map[string]any)
		require.True(t, ok, status)
		assert.Equal(t, "Domain not found", fault["message"])

		assert.NotNil(t, lenient.Show(context.Background(), "alice"), status)
	}
}

func TestLenientListNonJSON(t *testing.T) {
	for _, body := range []string{`<rsMailboxes/>`, `["alice"]`, ``} {
		server, got := captureServer(t, http.StatusOK, body)
		lenient := newTestClient(server.URL).Mailboxes("123", "example.com").Lenient()

		assert.Nil(t, lenient.List(context.Background()), body)
		require.Len(t, *got, 1)
	}
}

func TestLenientLogsRequestPath(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	server, _ := captureServer(t, http.StatusOK, `not json`)
	lenient := newTestClient(server.URL).Mailboxes("123", "example.com").Lenient()
	require.Nil(t, lenient.List(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "operation=list")
	assert.Contains(t, out, "target=/customers/123/domains/example.com/rs/mailboxes")
}

func TestClientRawIgnoresStatus(t *testing.T) {
	server, _ := captureServer(t, http.StatusForbidden, `{"forbiddenFault":{}}`)
	body, err := newTestClient(server.URL).Raw(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err)
	assert.Equal(t, `{"forbiddenFault":{}}`, body)
}
