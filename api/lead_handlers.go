package api

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/PeakReachMedia/peakreach-go/cache"
	"github.com/PeakReachMedia/peakreach-go/email"
	"github.com/PeakReachMedia/peakreach-go/models"
	"github.com/PeakReachMedia/peakreach-go/ratelimit"
	"github.com/PeakReachMedia/peakreach-go/utils"
	"github.com/gin-gonic/gin"
)

// LeadService creates and updates lead records. Calls are rate limited per
// origin/session; notification dispatch after a successful write is
// fire-and-forget.
type LeadService struct {
	db      *sql.DB
	cache   *cache.Manager
	limiter *ratelimit.Limiter
	mailer  *email.Client
}

func NewLeadService(db *sql.DB, cacheManager *cache.Manager, limiter *ratelimit.Limiter, mailer *email.Client) *LeadService {
	return &LeadService{
		db:      db,
		cache:   cacheManager,
		limiter: limiter,
		mailer:  mailer,
	}
}

// CreateOrUpdateHandler inserts a new lead when no lead_id is supplied,
// otherwise updates the identified lead in place. The step value is
// caller-supplied and deliberately not checked for monotonicity.
func (s *LeadService) CreateOrUpdateHandler(c *gin.Context) {
	sessionID := c.GetHeader(SessionIDHeader)

	if s.limiter != nil {
		key := c.ClientIP()
		if sessionID != "" {
			key = key + ":" + sessionID
		}
		if !s.limiter.Allow(c.Request.Context(), key) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
	}

	var req models.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	var lead *models.Lead
	var err error
	if req.LeadID == nil {
		lead, err = s.createLead(&req, sessionID)
	} else {
		lead, err = s.updateLead(*req.LeadID, &req)
	}
	if err != nil {
		switch err {
		case errMissingLeadFields:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Website URL and email are required"})
		case errLeadNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		default:
			log.Printf("ERROR: CreateOrUpdateHandler - lead write failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	go s.dispatchLeadNotification(lead)

	c.JSON(http.StatusOK, lead)
}

// GetLeadHandler is the lead-detail read path.
func (s *LeadService) GetLeadHandler(c *gin.Context) {
	lead, err := s.GetLeadByID(c.Param("id"))
	if err != nil {
		log.Printf("ERROR: GetLeadHandler - lead lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if lead == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	c.JSON(http.StatusOK, lead)
}

var (
	errMissingLeadFields = fmt.Errorf("website_url and email are required")
	errLeadNotFound      = fmt.Errorf("lead not found")
)

func (s *LeadService) createLead(req *models.LeadRequest, sessionID string) (*models.Lead, error) {
	if req.WebsiteURL == "" || req.Email == "" {
		return nil, errMissingLeadFields
	}

	step := req.Step
	if step == 0 {
		step = 1
	}

	now := time.Now().UTC()
	lead := &models.Lead{
		ID:             utils.GenerateULID(),
		WebsiteURL:     req.WebsiteURL,
		Email:          req.Email,
		Role:           req.Role,
		MonthlyRevenue: req.MonthlyRevenue,
		Phone:          req.Phone,
		CompanyName:    req.CompanyName,
		Step:           step,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// A lead may exist without a session; only a well-formed id is
	// associated.
	if sessionID != "" && utils.IsSessionID(sessionID) {
		lead.SessionID = &sessionID
	}

	query := `INSERT INTO leads (id, session_id, website_url, email, role, monthly_revenue, phone, company_name, step, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(
		query,
		lead.ID,
		lead.SessionID,
		lead.WebsiteURL,
		lead.Email,
		lead.Role,
		lead.MonthlyRevenue,
		lead.Phone,
		lead.CompanyName,
		lead.Step,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	return lead, nil
}

func (s *LeadService) updateLead(leadID string, req *models.LeadRequest) (*models.Lead, error) {
	lead, err := s.GetLeadByID(leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, errLeadNotFound
	}

	if req.WebsiteURL != "" {
		lead.WebsiteURL = req.WebsiteURL
	}
	if req.Email != "" {
		lead.Email = req.Email
	}
	if req.Role != nil {
		lead.Role = req.Role
	}
	if req.MonthlyRevenue != nil {
		lead.MonthlyRevenue = req.MonthlyRevenue
	}
	if req.Phone != nil {
		lead.Phone = req.Phone
	}
	if req.CompanyName != nil {
		lead.CompanyName = req.CompanyName
	}
	if req.Step != 0 {
		lead.Step = req.Step
	}
	lead.UpdatedAt = time.Now().UTC()

	query := `UPDATE leads
	          SET website_url = ?, email = ?, role = ?, monthly_revenue = ?, phone = ?, company_name = ?, step = ?, updated_at = ?
	          WHERE id = ?`

	_, err = s.db.Exec(
		query,
		lead.WebsiteURL,
		lead.Email,
		lead.Role,
		lead.MonthlyRevenue,
		lead.Phone,
		lead.CompanyName,
		lead.Step,
		lead.UpdatedAt,
		lead.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	return lead, nil
}

// GetLeadByID returns the stored lead, or nil when absent.
func (s *LeadService) GetLeadByID(leadID string) (*models.Lead, error) {
	query := `SELECT id, session_id, website_url, email, role, monthly_revenue, phone, company_name, step, created_at, updated_at
	          FROM leads
	          WHERE id = ?
	          LIMIT 1`

	var lead models.Lead
	var sessionID, role, monthlyRevenue, phone, companyName sql.NullString

	err := s.db.QueryRow(query, leadID).Scan(
		&lead.ID,
		&sessionID,
		&lead.WebsiteURL,
		&lead.Email,
		&role,
		&monthlyRevenue,
		&phone,
		&companyName,
		&lead.Step,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if sessionID.Valid {
		lead.SessionID = &sessionID.String
	}
	if role.Valid {
		lead.Role = &role.String
	}
	if monthlyRevenue.Valid {
		lead.MonthlyRevenue = &monthlyRevenue.String
	}
	if phone.Valid {
		lead.Phone = &phone.String
	}
	if companyName.Valid {
		lead.CompanyName = &companyName.String
	}

	return &lead, nil
}

// dispatchLeadNotification emails a lead summary. Failures are logged and
// swallowed; the lead write is the operation of record.
func (s *LeadService) dispatchLeadNotification(lead *models.Lead) {
	if s.mailer == nil || lead == nil {
		return
	}

	var session *models.Session
	if lead.SessionID != nil {
		if cached, found := s.cache.GetSession(*lead.SessionID); found {
			session = cached
		}
	}

	if err := s.mailer.SendLeadNotification(lead, session, formStepLabel(lead.Step)); err != nil {
		log.Printf("WARN: lead notification failed for %s: %v", lead.ID, err)
	}
}

func formStepLabel(step int) string {
	switch step {
	case 1:
		return "Initial Capture"
	case 2:
		return "Audit"
	case 3:
		return "Competitor Analysis"
	case 4:
		return "Booking"
	default:
		return fmt.Sprintf("Step %d", step)
	}
}
