package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"triage-assistant/internal/nlu"
	"triage-assistant/internal/policy"
	"triage-assistant/internal/safety"
	"triage-assistant/internal/session"
	"triage-assistant/internal/triage"
	"triage-assistant/pkg"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine := triage.NewEngine(
		session.NewStore(0),
		nlu.NewExtractor(nlu.NewLexiconTagger(), nil),
		policy.NewEngine(),
		nil,
		safety.NewRuleReviewer(),
		nil,
		nil,
	)
	return NewServer(engine, nil, prometheus.NewRegistry())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChat_Turn(t *testing.T) {
	srv := newTestServer(t)
	body := strings.NewReader(`{"session_id":"s1","message":"Crushing chest pain and shortness of breath"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var reply pkg.TurnReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	require.Equal(t, pkg.StatusEmergency, reply.Status)
	require.Equal(t, pkg.Disclaimer, reply.Disclaimer)
}

func TestChat_SessionIDFromQueryWinsOverBody(t *testing.T) {
	srv := newTestServer(t)

	// Fill a slot under session "q".
	body := strings.NewReader(`{"session_id":"b","message":"sore throat for 2 days"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat?session_id=q", body))
	require.Equal(t, http.StatusOK, rec.Code)

	// Session "b" saw nothing, so its first turn starts from scratch.
	body = strings.NewReader(`{"session_id":"b","message":"how bad is it"}`)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var reply pkg.TurnReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	require.Equal(t, pkg.StatusAsk, reply.Status)
	require.Contains(t, reply.Reply, "describe your main symptom")
}

func TestChat_EmptyMessage(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"session_id":"s1"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_MalformedBody(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{not json`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
