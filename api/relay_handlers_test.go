package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeakReachMedia/peakreach-go/models"
)

func newRelayRouter(webhookURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewRelayService(webhookURL)
	r := gin.New()
	r.POST("/api/v1/forms/relay", svc.RelayHandler)
	return r
}

func postRelay(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forms/relay", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRelayForwardsPayloadToSink(t *testing.T) {
	var got models.FormRelayRequest
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer sink.Close()

	r := newRelayRouter(sink.URL)
	w := postRelay(r, `{"form_id":"contact","form_name":"Contact Us","page_url":"https://peakreach.io/contact","trigger_type":"submit","data":{"message":"hello"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, "contact", got.FormID)
	assert.Equal(t, "hello", got.Data["message"])
}

func TestRelayIgnoresSinkStatus(t *testing.T) {
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sheet quota exceeded", http.StatusInternalServerError)
	}))
	defer sink.Close()

	r := newRelayRouter(sink.URL)
	w := postRelay(r, `{"form_id":"contact"}`)

	// Delivery is best-effort: a sink-side failure is still a success for
	// the submitter.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestRelayUnreachableSinkReturnsBadGateway(t *testing.T) {
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	sink.Close()

	r := newRelayRouter(sink.URL)
	w := postRelay(r, `{"form_id":"contact"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to relay form")
}

func TestRelayRequiresFormID(t *testing.T) {
	r := newRelayRouter("")
	w := postRelay(r, `{"form_name":"Contact Us"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Form ID required")
}

func TestRelayWithoutConfiguredSinkSucceeds(t *testing.T) {
	r := newRelayRouter("")
	w := postRelay(r, `{"form_id":"contact"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}
