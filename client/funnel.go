package client

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/PeakReachMedia/peakreach-go/models"
)

// LeadData is the funnel's locally accumulated lead info, independent of the
// server Lead entity's identifier.
type LeadData struct {
	WebsiteURL     string `json:"website_url"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Role           string `json:"role,omitempty"`
	MonthlyRevenue string `json:"monthly_revenue,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
}

// AuditData holds the locally cached audit step results.
type AuditData struct {
	SEOScore           int       `json:"seo_score"`
	PerformanceScore   int       `json:"performance_score"`
	AccessibilityScore int       `json:"accessibility_score"`
	BestPracticesScore int       `json:"best_practices_score"`
	AIVisibilityScore  int       `json:"ai_visibility_score"`
	IssuesFound        int       `json:"issues_found"`
	Opportunities      []string  `json:"opportunities,omitempty"`
	Diagnostics        []string  `json:"diagnostics,omitempty"`
	AnalyzedURL        string    `json:"analyzed_url"`
	Timestamp          time.Time `json:"timestamp"`
}

// CompetitorData holds the locally cached competitor-analysis step results.
type CompetitorData struct {
	Niche                  string                   `json:"niche"`
	Competitors            []models.CompetitorEntry `json:"competitors,omitempty"`
	MissedOpportunityScore int                      `json:"missed_opportunity_score"`
	GapTechnical           int                      `json:"gap_technical"`
	GapContent             int                      `json:"gap_content"`
	GapAuthority           int                      `json:"gap_authority"`
	GapLocalPresence       int                      `json:"gap_local_presence"`
	EstRevenueLoss         models.RevenueLoss       `json:"est_revenue_loss"`
	Recommendations        []string                 `json:"recommendations,omitempty"`
}

// BookingData holds the locally cached booking step results.
type BookingData struct {
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	MeetingLink   string `json:"meeting_link"`
	AttendeeName  string `json:"attendee_name"`
	AttendeeEmail string `json:"attendee_email"`
}

// FunnelData is the aggregate of the funnel session's progressive state. All
// sub-entities are optional; setting one neither requires nor clears the
// others.
type FunnelData struct {
	Lead       *LeadData       `json:"lead"`
	Audit      *AuditData      `json:"audit"`
	Competitor *CompetitorData `json:"competitor"`
	Booking    *BookingData    `json:"booking"`
}

// FunnelCache is the durable, synchronous accumulation of funnel-step data
// across page reloads. Each setter merges one sub-entity and immediately
// persists the full aggregate. No cross-tab coordination: last write wins.
type FunnelCache struct {
	mu      sync.Mutex
	storage Storage
	loaded  bool
	data    FunnelData
}

func NewFunnelCache(storage Storage) *FunnelCache {
	return &FunnelCache{storage: storage}
}

// load parses the stored snapshot on first use. A parse failure is treated
// as "no prior data" and never surfaces to the caller.
func (f *FunnelCache) load() {
	if f.loaded {
		return
	}
	f.loaded = true

	raw, ok := f.storage.Get(FunnelDataKey)
	if !ok {
		return
	}

	var data FunnelData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		log.Printf("WARN: discarding unreadable funnel snapshot: %v", err)
		return
	}
	f.data = data
}

func (f *FunnelCache) persist() {
	raw, err := json.Marshal(f.data)
	if err != nil {
		log.Printf("WARN: failed to encode funnel data: %v", err)
		return
	}
	if err := f.storage.Set(FunnelDataKey, string(raw)); err != nil {
		log.Printf("WARN: failed to persist funnel data: %v", err)
	}
}

// Get returns the current aggregate.
func (f *FunnelCache) Get() FunnelData {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	return f.data
}

// SetLeadData merges the lead sub-entity and persists the aggregate.
func (f *FunnelCache) SetLeadData(lead LeadData) FunnelData {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	f.data.Lead = &lead
	f.persist()
	return f.data
}

// SetAuditData merges the audit sub-entity and persists the aggregate.
func (f *FunnelCache) SetAuditData(audit AuditData) FunnelData {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	f.data.Audit = &audit
	f.persist()
	return f.data
}

// SetCompetitorData merges the competitor sub-entity and persists the
// aggregate.
func (f *FunnelCache) SetCompetitorData(competitor CompetitorData) FunnelData {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	f.data.Competitor = &competitor
	f.persist()
	return f.data
}

// SetBookingData merges the booking sub-entity and persists the aggregate.
func (f *FunnelCache) SetBookingData(booking BookingData) FunnelData {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.load()
	f.data.Booking = &booking
	f.persist()
	return f.data
}

// Clear erases the stored snapshot and resets the aggregate.
func (f *FunnelCache) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = true
	f.data = FunnelData{}
	if err := f.storage.Delete(FunnelDataKey); err != nil {
		log.Printf("WARN: failed to clear funnel data: %v", err)
	}
}
