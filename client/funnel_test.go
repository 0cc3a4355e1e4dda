package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeakReachMedia/peakreach-go/models"
)

func TestFunnelCacheRoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	funnel := NewFunnelCache(storage)

	lead := LeadData{
		WebsiteURL:  "example.com",
		Email:       "a@b.com",
		CompanyName: "Example Co",
	}
	data := funnel.SetLeadData(lead)

	require.NotNil(t, data.Lead)
	assert.Equal(t, lead, *data.Lead)
	assert.Nil(t, data.Audit)
	assert.Nil(t, data.Competitor)
	assert.Nil(t, data.Booking)

	audit := AuditData{
		SEOScore:         72,
		PerformanceScore: 48,
		IssuesFound:      9,
		Opportunities:    []string{"Compress images", "Add meta descriptions"},
		AnalyzedURL:      "https://example.com",
		Timestamp:        time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	data = funnel.SetAuditData(audit)

	// Setting one sub-entity leaves the others untouched.
	require.NotNil(t, data.Lead)
	require.NotNil(t, data.Audit)
	assert.Equal(t, audit, *data.Audit)

	// A simulated reload re-parses the durable snapshot.
	reloaded := NewFunnelCache(storage).Get()
	require.NotNil(t, reloaded.Lead)
	require.NotNil(t, reloaded.Audit)
	assert.Equal(t, lead, *reloaded.Lead)
	assert.Equal(t, audit, *reloaded.Audit)
	assert.Nil(t, reloaded.Competitor)
	assert.Nil(t, reloaded.Booking)
}

func TestFunnelCacheCompetitorAndBooking(t *testing.T) {
	storage := NewMemoryStorage()
	funnel := NewFunnelCache(storage)

	competitor := CompetitorData{
		Niche: "Dental clinics",
		Competitors: []models.CompetitorEntry{
			{Name: "SmileWorks", Domain: "smileworks.com", EstimatedStrength: 81, Rationale: "Strong local pack presence"},
		},
		MissedOpportunityScore: 64,
		GapTechnical:           12,
		GapContent:             20,
		GapAuthority:           18,
		GapLocalPresence:       14,
		EstRevenueLoss:         models.RevenueLoss{Currency: "USD", Amount: 4200, Basis: "estimated monthly search volume"},
		Recommendations:        []string{"Claim local listings"},
	}
	funnel.SetCompetitorData(competitor)

	booking := BookingData{
		Date:          "2026-03-20",
		StartTime:     "10:00",
		EndTime:       "10:30",
		MeetingLink:   "https://meet.peakreach.io/abc",
		AttendeeName:  "Jamie",
		AttendeeEmail: "jamie@example.com",
	}
	data := funnel.SetBookingData(booking)

	require.NotNil(t, data.Competitor)
	require.NotNil(t, data.Booking)
	assert.Equal(t, competitor, *data.Competitor)
	assert.Equal(t, booking, *data.Booking)
	assert.Nil(t, data.Lead)
}

func TestFunnelCacheSwallowsCorruptSnapshot(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(FunnelDataKey, "{not json"))

	data := NewFunnelCache(storage).Get()
	assert.Nil(t, data.Lead)
	assert.Nil(t, data.Audit)
	assert.Nil(t, data.Competitor)
	assert.Nil(t, data.Booking)
}

func TestFunnelCacheClear(t *testing.T) {
	storage := NewMemoryStorage()
	funnel := NewFunnelCache(storage)

	funnel.SetLeadData(LeadData{WebsiteURL: "example.com", Email: "a@b.com"})
	_, stored := storage.Get(FunnelDataKey)
	require.True(t, stored)

	funnel.Clear()

	data := funnel.Get()
	assert.Nil(t, data.Lead)
	_, stored = storage.Get(FunnelDataKey)
	assert.False(t, stored)

	// Cleared state survives a reload too.
	reloaded := NewFunnelCache(storage).Get()
	assert.Nil(t, reloaded.Lead)
}

func TestFileStorageBacksFunnelCache(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	NewFunnelCache(storage).SetLeadData(LeadData{WebsiteURL: "example.com", Email: "a@b.com"})

	reloaded := NewFunnelCache(storage).Get()
	require.NotNil(t, reloaded.Lead)
	assert.Equal(t, "example.com", reloaded.Lead.WebsiteURL)
}

func TestConsentStoreIndependentOfFunnel(t *testing.T) {
	storage := NewMemoryStorage()
	consent := NewConsentStore(storage)

	assert.Nil(t, consent.Get())

	require.NoError(t, consent.Set(CookieConsent{Analytics: true, Marketing: false, Functional: true}))

	got := consent.Get()
	require.NotNil(t, got)
	assert.True(t, got.Necessary, "necessary cookies are always on")
	assert.True(t, got.Analytics)
	assert.False(t, got.Marketing)
	assert.False(t, got.UpdatedAt.IsZero())

	// Consent lives under its own key and never touches funnel data.
	_, funnelStored := storage.Get(FunnelDataKey)
	assert.False(t, funnelStored)

	require.NoError(t, consent.Clear())
	assert.Nil(t, consent.Get())
}
