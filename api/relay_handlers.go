package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/PeakReachMedia/peakreach-go/models"
	"github.com/gin-gonic/gin"
)

// RelayService forwards arbitrary form submissions to the external sheet/
// notification sink. The sink's response body is never inspected; only a
// transport failure counts as an error.
type RelayService struct {
	webhookURL string
	httpClient *http.Client
}

func NewRelayService(webhookURL string) *RelayService {
	return &RelayService{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// RelayHandler accepts a form payload and relays it outbound.
func (s *RelayService) RelayHandler(c *gin.Context) {
	var req models.FormRelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if req.FormID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Form ID required"})
		return
	}

	if s.webhookURL == "" {
		log.Printf("WARN: form relay dropped, no webhook configured (form: %s)", req.FormID)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	body, err := json.Marshal(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("ERROR: form relay failed for %s: %v", req.FormID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to relay form"})
		return
	}
	// The sink's status and body are intentionally ignored; delivery is
	// best-effort.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	c.JSON(http.StatusOK, gin.H{"success": true})
}
