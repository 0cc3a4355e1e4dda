// Package models defines the entities and wire types shared by the API and
// the client SDK.
package models

import "time"

// Session is one visitor's continuous browsing identity. The identifier is
// server-generated at creation and never regenerated for the same browser
// unless the cached identifier fails validation.
type Session struct {
	ID             string    `json:"id"`
	FirstPageURL   string    `json:"first_page_url"`
	CurrentPageURL string    `json:"current_page_url"`
	Referrer       string    `json:"referrer"`
	City           *string   `json:"city,omitempty"`
	State          *string   `json:"state,omitempty"`
	Country        *string   `json:"country,omitempty"`
	Browser        string    `json:"browser"`
	UserAgent      string    `json:"user_agent"`
	FirstLandedAt  time.Time `json:"first_landed_at"`
}

// Lead is a visitor-supplied contact/business record, captured incrementally
// across funnel steps. SessionID is optional; a lead may exist without one.
type Lead struct {
	ID             string    `json:"id"`
	SessionID      *string   `json:"session_id,omitempty"`
	WebsiteURL     string    `json:"website_url"`
	Email          string    `json:"email"`
	Role           *string   `json:"role,omitempty"`
	MonthlyRevenue *string   `json:"monthly_revenue,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	CompanyName    *string   `json:"company_name,omitempty"`
	Step           int       `json:"step"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AuditResult holds one site audit run for a lead. Scores are 0-100.
type AuditResult struct {
	ID                 string    `json:"id"`
	LeadID             string    `json:"lead_id"`
	URL                string    `json:"url"`
	SEOScore           int       `json:"seo_score"`
	PerformanceScore   int       `json:"performance_score"`
	AccessibilityScore int       `json:"accessibility_score"`
	BestPracticesScore int       `json:"best_practices_score"`
	AIVisibilityScore  int       `json:"ai_visibility_score"`
	IssuesFound        int       `json:"issues_found"`
	Opportunities      []string  `json:"opportunities"`
	Diagnostics        []string  `json:"diagnostics"`
	CreatedAt          time.Time `json:"created_at"`
}

// CompetitorEntry is one competitor in a competitor analysis.
type CompetitorEntry struct {
	Name              string `json:"name"`
	Domain            string `json:"domain"`
	EstimatedStrength int    `json:"estimated_strength"`
	Rationale         string `json:"rationale"`
}

// RevenueLoss is the estimated monthly revenue a lead is losing to
// competitors.
type RevenueLoss struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
	Basis    string  `json:"basis"`
}

// CompetitorAnalysis holds one competitor analysis run for a lead. The gap
// breakdown is the four-part split behind the missed-opportunity score.
type CompetitorAnalysis struct {
	ID                     string            `json:"id"`
	LeadID                 string            `json:"lead_id"`
	Niche                  string            `json:"niche"`
	Competitors            []CompetitorEntry `json:"competitors"`
	MissedOpportunityScore int               `json:"missed_opportunity_score"`
	GapTechnical           int               `json:"gap_technical"`
	GapContent             int               `json:"gap_content"`
	GapAuthority           int               `json:"gap_authority"`
	GapLocalPresence       int               `json:"gap_local_presence"`
	EstRevenueLoss         RevenueLoss       `json:"est_revenue_loss"`
	Recommendations        []string          `json:"recommendations"`
	CreatedAt              time.Time         `json:"created_at"`
}

// Booking holds a scheduled strategy call for a lead.
type Booking struct {
	ID            string    `json:"id"`
	LeadID        string    `json:"lead_id"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	MeetingLink   string    `json:"meeting_link"`
	AttendeeName  string    `json:"attendee_name"`
	AttendeeEmail string    `json:"attendee_email"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateSessionRequest is the body of the session creation call.
type CreateSessionRequest struct {
	FirstPageURL string `json:"first_page_url"`
	Referrer     string `json:"referrer"`
	UserAgent    string `json:"user_agent"`
	Browser      string `json:"browser"`
}

// LeadRequest is the body of the lead create/update call. LeadID absent means
// insert; present means update the identified lead in place.
type LeadRequest struct {
	LeadID         *string `json:"lead_id,omitempty"`
	WebsiteURL     string  `json:"website_url"`
	Email          string  `json:"email"`
	Role           *string `json:"role,omitempty"`
	MonthlyRevenue *string `json:"monthly_revenue,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	CompanyName    *string `json:"company_name,omitempty"`
	Step           int     `json:"step"`
}

// SessionDataRequest selects which categories the session-data query returns.
type SessionDataRequest struct {
	Type string `json:"type"`
}

// FormRelayRequest is an arbitrary form submission relayed to the external
// sheet/notification sink.
type FormRelayRequest struct {
	FormID      string         `json:"form_id"`
	FormName    string         `json:"form_name"`
	PageURL     string         `json:"page_url"`
	TriggerType string         `json:"trigger_type"`
	Data        map[string]any `json:"data"`
}
