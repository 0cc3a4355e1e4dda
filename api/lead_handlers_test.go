package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeakReachMedia/peakreach-go/cache"
	"github.com/PeakReachMedia/peakreach-go/models"
	"github.com/PeakReachMedia/peakreach-go/ratelimit"
)

const testLeadID = "01HV3X5T9RWQZJ4K8B2N6M7P0A"

var leadColumnsTest = []string{
	"id", "session_id", "website_url", "email", "role",
	"monthly_revenue", "phone", "company_name", "step",
	"created_at", "updated_at",
}

func newLeadRouter(t *testing.T, limiter *ratelimit.Limiter) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gin.SetMode(gin.TestMode)
	svc := NewLeadService(db, cache.NewManager(), limiter, nil)

	r := gin.New()
	r.POST("/api/v1/leads", svc.CreateOrUpdateHandler)
	r.GET("/api/v1/leads/:id", svc.GetLeadHandler)
	return r, mock
}

func postLead(r *gin.Engine, body string, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(SessionIDHeader, sessionID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateLeadRequiresWebsiteAndEmail(t *testing.T) {
	r, mock := newLeadRouter(t, nil)

	w := postLead(r, `{"email":"a@b.com","step":1}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Website URL and email are required")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLeadInsertsWithSessionAssociation(t *testing.T) {
	r, mock := newLeadRouter(t, nil)

	mock.ExpectExec("INSERT INTO leads").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := postLead(r, `{"website_url":"example.com","email":"a@b.com","step":1}`, testSessionID)

	require.Equal(t, http.StatusOK, w.Code)

	var lead models.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lead))
	assert.Len(t, lead.ID, 26)
	assert.Equal(t, 1, lead.Step)
	require.NotNil(t, lead.SessionID)
	assert.Equal(t, testSessionID, *lead.SessionID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLeadWithoutSessionIsNotAFailure(t *testing.T) {
	r, mock := newLeadRouter(t, nil)

	mock.ExpectExec("INSERT INTO leads").
		WillReturnResult(sqlmock.NewResult(1, 1))

	// A malformed session header degrades to "no association", never an
	// error.
	w := postLead(r, `{"website_url":"example.com","email":"a@b.com","step":1}`, "garbage-session-id")

	require.Equal(t, http.StatusOK, w.Code)

	var lead models.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lead))
	assert.Nil(t, lead.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLeadMutatesSameRow(t *testing.T) {
	r, mock := newLeadRouter(t, nil)

	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(testLeadID).
		WillReturnRows(sqlmock.NewRows(leadColumnsTest).
			AddRow(testLeadID, testSessionID, "example.com", "a@b.com", nil, nil, nil, nil, 1, created, created))
	mock.ExpectExec("UPDATE leads").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postLead(r, `{"lead_id":"`+testLeadID+`","website_url":"example.com","email":"a@b.com","role":"Owner","step":2}`, "")

	require.Equal(t, http.StatusOK, w.Code)

	var lead models.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lead))
	assert.Equal(t, testLeadID, lead.ID, "update targets the existing row")
	assert.Equal(t, 2, lead.Step)
	require.NotNil(t, lead.Role)
	assert.Equal(t, "Owner", *lead.Role)
	assert.Equal(t, created, lead.CreatedAt.UTC())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUnknownLeadReturnsNotFound(t *testing.T) {
	r, mock := newLeadRouter(t, nil)

	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(testLeadID).
		WillReturnError(sql.ErrNoRows)

	w := postLead(r, `{"lead_id":"`+testLeadID+`","step":2}`, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Lead not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLeadRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := ratelimit.NewLimiter(rdb, time.Minute, 1)

	r, mock := newLeadRouter(t, limiter)

	mock.ExpectExec("INSERT INTO leads").
		WillReturnResult(sqlmock.NewResult(1, 1))

	first := postLead(r, `{"website_url":"example.com","email":"a@b.com","step":1}`, testSessionID)
	require.Equal(t, http.StatusOK, first.Code)

	second := postLead(r, `{"website_url":"example.com","email":"a@b.com","step":1}`, testSessionID)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "Too many requests")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLeadDetail(t *testing.T) {
	r, mock := newLeadRouter(t, nil)

	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(testLeadID).
		WillReturnRows(sqlmock.NewRows(leadColumnsTest).
			AddRow(testLeadID, nil, "example.com", "a@b.com", nil, nil, nil, "Example Co", 3, created, created))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/"+testLeadID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var lead models.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lead))
	assert.Equal(t, testLeadID, lead.ID)
	assert.Nil(t, lead.SessionID)
	require.NotNil(t, lead.CompanyName)
	assert.Equal(t, "Example Co", *lead.CompanyName)

	assert.NoError(t, mock.ExpectationsWereMet())
}
