package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	sq "github.com/Masterminds/squirrel"
	"github.com/PeakReachMedia/peakreach-go/models"
	"github.com/PeakReachMedia/peakreach-go/utils"
	"github.com/gin-gonic/gin"
)

// Data-type selectors accepted by the session-data query.
const (
	dataTypeLeads      = "leads"
	dataTypeAudits     = "audit_results"
	dataTypeCompetitor = "competitor_analysis"
	dataTypeAll        = "all"
)

var leadColumns = []string{
	"id", "session_id", "website_url", "email", "role",
	"monthly_revenue", "phone", "company_name", "step",
	"created_at", "updated_at",
}

var auditColumns = []string{
	"id", "lead_id", "url", "seo_score", "performance_score",
	"accessibility_score", "best_practices_score", "ai_visibility_score",
	"issues_found", "opportunities", "diagnostics", "created_at",
}

var competitorColumns = []string{
	"id", "lead_id", "niche", "competitors", "missed_opportunity_score",
	"gap_technical", "gap_content", "gap_authority", "gap_local_presence",
	"est_revenue_loss", "recommendations", "created_at",
}

// QueryService assembles the read-only view of everything associated with a
// session, for operator/debugging use. It is a pure read.
type QueryService struct {
	db       *sql.DB
	sessions *SessionService
}

func NewQueryService(db *sql.DB, sessions *SessionService) *QueryService {
	return &QueryService{
		db:       db,
		sessions: sessions,
	}
}

// SessionDataHandler returns the requested categories for a session, each an
// ordered (most recent first), possibly empty, never null sequence.
func (s *QueryService) SessionDataHandler(c *gin.Context) {
	sessionID := c.GetHeader(SessionIDHeader)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID required"})
		return
	}
	if !utils.IsSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return
	}

	var req models.SessionDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	switch req.Type {
	case dataTypeLeads, dataTypeAudits, dataTypeCompetitor, dataTypeAll:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data type"})
		return
	}

	exists, err := s.sessions.SessionExists(sessionID)
	if err != nil {
		log.Printf("ERROR: SessionDataHandler - session check failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	// Lead identifiers scope every other category, so leads are always
	// resolved first.
	leads, err := s.leadsBySession(sessionID)
	if err != nil {
		log.Printf("ERROR: SessionDataHandler - lead query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	leadIDs := make([]string, 0, len(leads))
	for _, lead := range leads {
		leadIDs = append(leadIDs, lead.ID)
	}

	response := gin.H{}

	if req.Type == dataTypeLeads || req.Type == dataTypeAll {
		response["leads"] = leads
	}

	if req.Type == dataTypeAudits || req.Type == dataTypeAll {
		audits, err := s.auditsByLeadIDs(leadIDs)
		if err != nil {
			log.Printf("ERROR: SessionDataHandler - audit query failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		response["audit_results"] = audits
	}

	if req.Type == dataTypeCompetitor || req.Type == dataTypeAll {
		analyses, err := s.competitorAnalysesByLeadIDs(leadIDs)
		if err != nil {
			log.Printf("ERROR: SessionDataHandler - competitor query failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		response["competitor_analysis"] = analyses
	}

	log.Printf("Session data access: session=%s type=%s leads=%d", sessionID, req.Type, len(leads))
	c.JSON(http.StatusOK, response)
}

func (s *QueryService) leadsBySession(sessionID string) ([]models.Lead, error) {
	query, args, err := sq.Select(leadColumns...).
		From("leads").
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lead query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var lead models.Lead
		var sid, role, monthlyRevenue, phone, companyName sql.NullString

		if err := rows.Scan(
			&lead.ID,
			&sid,
			&lead.WebsiteURL,
			&lead.Email,
			&role,
			&monthlyRevenue,
			&phone,
			&companyName,
			&lead.Step,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}

		if sid.Valid {
			lead.SessionID = &sid.String
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

		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

func (s *QueryService) auditsByLeadIDs(leadIDs []string) ([]models.AuditResult, error) {
	audits := []models.AuditResult{}
	if len(leadIDs) == 0 {
		return audits, nil
	}

	query, args, err := sq.Select(auditColumns...).
		From("audit_results").
		Where(sq.Eq{"lead_id": leadIDs}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var audit models.AuditResult
		var opportunities, diagnostics string

		if err := rows.Scan(
			&audit.ID,
			&audit.LeadID,
			&audit.URL,
			&audit.SEOScore,
			&audit.PerformanceScore,
			&audit.AccessibilityScore,
			&audit.BestPracticesScore,
			&audit.AIVisibilityScore,
			&audit.IssuesFound,
			&opportunities,
			&diagnostics,
			&audit.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit result: %w", err)
		}

		audit.Opportunities = decodeStringList(opportunities)
		audit.Diagnostics = decodeStringList(diagnostics)
		audits = append(audits, audit)
	}

	return audits, rows.Err()
}

func (s *QueryService) competitorAnalysesByLeadIDs(leadIDs []string) ([]models.CompetitorAnalysis, error) {
	analyses := []models.CompetitorAnalysis{}
	if len(leadIDs) == 0 {
		return analyses, nil
	}

	query, args, err := sq.Select(competitorColumns...).
		From("competitor_analysis").
		Where(sq.Eq{"lead_id": leadIDs}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build competitor query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitor analyses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var analysis models.CompetitorAnalysis
		var competitors, revenueLoss, recommendations string

		if err := rows.Scan(
			&analysis.ID,
			&analysis.LeadID,
			&analysis.Niche,
			&competitors,
			&analysis.MissedOpportunityScore,
			&analysis.GapTechnical,
			&analysis.GapContent,
			&analysis.GapAuthority,
			&analysis.GapLocalPresence,
			&revenueLoss,
			&recommendations,
			&analysis.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan competitor analysis: %w", err)
		}

		if err := json.Unmarshal([]byte(competitors), &analysis.Competitors); err != nil {
			analysis.Competitors = []models.CompetitorEntry{}
		}
		if err := json.Unmarshal([]byte(revenueLoss), &analysis.EstRevenueLoss); err != nil {
			analysis.EstRevenueLoss = models.RevenueLoss{}
		}
		analysis.Recommendations = decodeStringList(recommendations)

		analyses = append(analyses, analysis)
	}

	return analyses, rows.Err()
}

func decodeStringList(raw string) []string {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}
