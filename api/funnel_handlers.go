package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/PeakReachMedia/peakreach-go/email"
	"github.com/PeakReachMedia/peakreach-go/models"
	"github.com/PeakReachMedia/peakreach-go/utils"
	"github.com/gin-gonic/gin"
)

// FunnelService persists the per-lead funnel artifacts (audit results,
// competitor analyses, bookings) that the session-data query aggregates.
type FunnelService struct {
	db     *sql.DB
	mailer *email.Client
	leads  *LeadService
}

func NewFunnelService(db *sql.DB, mailer *email.Client, leads *LeadService) *FunnelService {
	return &FunnelService{
		db:     db,
		mailer: mailer,
		leads:  leads,
	}
}

// CreateAuditHandler stores one audit run for a lead.
func (s *FunnelService) CreateAuditHandler(c *gin.Context) {
	var audit models.AuditResult
	if err := c.ShouldBindJSON(&audit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if audit.LeadID == "" || audit.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lead ID and URL are required"})
		return
	}

	audit.ID = utils.GenerateULID()
	audit.CreatedAt = time.Now().UTC()

	if err := s.insertAudit(&audit); err != nil {
		log.Printf("ERROR: CreateAuditHandler - failed to store audit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, audit)
}

// CreateCompetitorAnalysisHandler stores one competitor analysis for a lead.
func (s *FunnelService) CreateCompetitorAnalysisHandler(c *gin.Context) {
	var analysis models.CompetitorAnalysis
	if err := c.ShouldBindJSON(&analysis); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if analysis.LeadID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lead ID required"})
		return
	}

	analysis.ID = utils.GenerateULID()
	analysis.CreatedAt = time.Now().UTC()

	if err := s.insertCompetitorAnalysis(&analysis); err != nil {
		log.Printf("ERROR: CreateCompetitorAnalysisHandler - failed to store analysis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// CreateBookingHandler stores a booked strategy call and notifies the team.
func (s *FunnelService) CreateBookingHandler(c *gin.Context) {
	var booking models.Booking
	if err := c.ShouldBindJSON(&booking); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if booking.LeadID == "" || booking.Date == "" || booking.AttendeeEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lead ID, date and attendee email are required"})
		return
	}

	booking.ID = utils.GenerateULID()
	booking.CreatedAt = time.Now().UTC()

	query := `INSERT INTO bookings (id, lead_id, date, start_time, end_time, meeting_link, attendee_name, attendee_email, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(
		query,
		booking.ID,
		booking.LeadID,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.MeetingLink,
		booking.AttendeeName,
		booking.AttendeeEmail,
		booking.CreatedAt,
	)
	if err != nil {
		log.Printf("ERROR: CreateBookingHandler - failed to store booking: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	go s.dispatchBookingNotification(&booking)

	c.JSON(http.StatusOK, booking)
}

func (s *FunnelService) insertAudit(audit *models.AuditResult) error {
	opportunities, err := json.Marshal(audit.Opportunities)
	if err != nil {
		opportunities = []byte("[]")
	}
	diagnostics, err := json.Marshal(audit.Diagnostics)
	if err != nil {
		diagnostics = []byte("[]")
	}

	query := `INSERT INTO audit_results (id, lead_id, url, seo_score, performance_score, accessibility_score, best_practices_score, ai_visibility_score, issues_found, opportunities, diagnostics, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.Exec(
		query,
		audit.ID,
		audit.LeadID,
		audit.URL,
		audit.SEOScore,
		audit.PerformanceScore,
		audit.AccessibilityScore,
		audit.BestPracticesScore,
		audit.AIVisibilityScore,
		audit.IssuesFound,
		string(opportunities),
		string(diagnostics),
		audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit result: %w", err)
	}

	return nil
}

func (s *FunnelService) insertCompetitorAnalysis(analysis *models.CompetitorAnalysis) error {
	competitors, err := json.Marshal(analysis.Competitors)
	if err != nil {
		competitors = []byte("[]")
	}
	revenueLoss, err := json.Marshal(analysis.EstRevenueLoss)
	if err != nil {
		revenueLoss = []byte("{}")
	}
	recommendations, err := json.Marshal(analysis.Recommendations)
	if err != nil {
		recommendations = []byte("[]")
	}

	query := `INSERT INTO competitor_analysis (id, lead_id, niche, competitors, missed_opportunity_score, gap_technical, gap_content, gap_authority, gap_local_presence, est_revenue_loss, recommendations, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.Exec(
		query,
		analysis.ID,
		analysis.LeadID,
		analysis.Niche,
		string(competitors),
		analysis.MissedOpportunityScore,
		analysis.GapTechnical,
		analysis.GapContent,
		analysis.GapAuthority,
		analysis.GapLocalPresence,
		string(revenueLoss),
		string(recommendations),
		analysis.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create competitor analysis: %w", err)
	}

	return nil
}

func (s *FunnelService) dispatchBookingNotification(booking *models.Booking) {
	if s.mailer == nil {
		return
	}

	lead, err := s.leads.GetLeadByID(booking.LeadID)
	if err != nil {
		log.Printf("WARN: booking notification lead lookup failed: %v", err)
	}

	if err := s.mailer.SendBookingNotification(booking, lead); err != nil {
		log.Printf("WARN: booking notification failed for %s: %v", booking.ID, err)
	}
}
