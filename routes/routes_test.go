package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"civicsync-be/models"
	"civicsync-be/routes"
	"civicsync-be/session"
	"civicsync-be/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "routes-test-secret"

var seededAt = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	t      *testing.T
	engine *gin.Engine
	store  *store.Store
}

type countingLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (l *countingLimiter) Incr(_ context.Context, key string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	return l.counts[key], nil
}

func (l *countingLimiter) Expire(context.Context, string, time.Duration) error { return nil }

func (l *countingLimiter) TTL(context.Context, string) (time.Duration, error) { return time.Hour, nil }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.New()
	require.NoError(t, s.Restore(store.DefaultSeed(seededAt)))

	r := gin.New()
	routes.Setup(r, routes.Deps{
		Store:         s,
		Sessions:      session.NewMockProvider("", 0, zerolog.Nop()),
		JWTSecret:     secret,
		IssueLimiter:  &countingLimiter{counts: map[string]int64{}},
		LimiterPrefix: "issue-limit",
		IssueLimit:    3,
	})
	return &fixture{t: t, engine: r, store: s}
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(email string, role models.Role) string {
	f.t.Helper()

	w := f.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "pw", "role": role})
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(f.t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPing(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Alice", "email": "alice@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Result().Cookies())

	w = f.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Alice", "email": "alice@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[map[string]any](t, w)["token"].(string)

	w = f.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "Alice", me["name"])
	assert.Equal(t, "citizen", me["role"])

	w = f.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "secret123", "role": "admin"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportIssue(t *testing.T) {
	f := newFixture(t)
	token := f.login("alice@example.com", models.Citizen)

	body := gin.H{
		"type":        "Potholes",
		"description": "Deep pothole on Main St",
		"location":    gin.H{"lat": 23.26, "lng": 77.41},
	}
	w := f.do(http.MethodPost, "/api/issue/create", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	issue := decode[models.Issue](t, w)
	assert.Equal(t, models.Pending, issue.Status)
	assert.Equal(t, 0, issue.Upvotes)
	assert.Equal(t, "alice", issue.ReportedBy)

	w = f.do(http.MethodPost, "/api/issue/create", token, gin.H{"type": "Potholes", "description": "no location"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[map[string]any](t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "lat")

	w = f.do(http.MethodPost, "/api/issue/create", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportIssue_RateLimited(t *testing.T) {
	f := newFixture(t)
	token := f.login("alice@example.com", models.Citizen)
	body := gin.H{"type": "Powercut", "description": "Outage", "location": gin.H{"lat": 23.2, "lng": 77.4}}

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/issue/create", token, body).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodPost, "/api/issue/create", token, body).Code)
}

func TestUpvoteIssue(t *testing.T) {
	f := newFixture(t)
	token := f.login("alice@example.com", models.Citizen)

	w := f.do(http.MethodPost, "/api/issue/1/upvote", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 48, decode[models.Issue](t, w).Upvotes)

	w = f.do(http.MethodPost, "/api/issue/1/upvote", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	issue := decode[models.Issue](t, w)
	assert.Equal(t, 48, issue.Upvotes)
	assert.True(t, issue.HasUpvoted)

	w = f.do(http.MethodGet, "/api/issue/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.Issue](t, w).HasUpvoted, "anonymous viewers have not upvoted")

	w = f.do(http.MethodGet, "/api/issue?tab=upvoted", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Issues      []models.Issue `json:"issues"`
		TotalIssues int            `json:"totalIssues"`
	}](t, w)
	require.Equal(t, 1, list.TotalIssues)
	assert.Equal(t, "1", list.Issues[0].ID)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/issue/missing/upvote", token, nil).Code)
}

func TestListIssues_Filters(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/issue?status=resolved", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["totalIssues"])

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/issue?status=closed", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/issue?tab=favourites", "", nil).Code)
}

func TestUpdateIssueStatus(t *testing.T) {
	f := newFixture(t)
	citizen := f.login("alice@example.com", models.Citizen)
	admin := f.login("admin@civicsync.com", models.Admin)
	body := gin.H{"status": "resolved", "remarks": "Fixed by crew"}

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPut, "/api/issue/1/status", citizen, body).Code)

	w := f.do(http.MethodPut, "/api/issue/1/status", admin, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	issue := decode[models.Issue](t, w)
	assert.Equal(t, models.Resolved, issue.Status)
	assert.Equal(t, "Fixed by crew", issue.AdminRemarks)

	w = f.do(http.MethodPut, "/api/issue/1/status", admin, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPut, "/api/issue/1/status", admin, gin.H{"status": "reopened"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/issue/nope/status", admin, body)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t)
	admin := f.login("admin@civicsync.com", models.Admin)

	w := f.do(http.MethodGet, "/api/issue/analytics", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[store.Stats](t, w)
	assert.Equal(t, 8, st.TotalIssues)
	assert.Equal(t, 85, st.TotalVolunteers)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/issue/analytics", "", nil).Code)
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	citizen := f.login("alice@example.com", models.Citizen)
	admin := f.login("admin@civicsync.com", models.Admin)

	body := gin.H{
		"title":          "Ward meeting",
		"description":    "Monthly ward meeting",
		"date":           "2026-04-02",
		"location":       "Ward Office",
		"type":           "meeting",
		"volunteerSlots": 2,
	}
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/events", citizen, body).Code)

	w := f.do(http.MethodPost, "/api/events", admin, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	event := decode[models.Event](t, w)

	for i := 0; i < 2; i++ {
		w = f.do(http.MethodPost, "/api/events/"+event.ID+"/register", citizen, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w = f.do(http.MethodPost, "/api/events/"+event.ID+"/register", citizen, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// the seeded municipal meeting is open and takes no registrations
	assert.Equal(t, http.StatusConflict, f.do(http.MethodPost, "/api/events/2/register", citizen, nil).Code)

	bad := gin.H{"title": "x", "description": "x", "date": "2026-04-02", "location": "x", "type": "meeting", "volunteerSlots": -1}
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/events", admin, bad).Code)

	w = f.do(http.MethodGet, "/api/events?month=2026-04", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	inApril := decode[[]models.Event](t, w)
	require.Len(t, inApril, 1)
	assert.Equal(t, 2, inApril[0].RegisteredVolunteers)

	w = f.do(http.MethodGet, "/api/events?date=2026-03-17", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Event](t, w), 1)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/events?month=April", "", nil).Code)
	assert.Len(t, decode[[]models.Event](t, f.do(http.MethodGet, "/api/events", "", nil)), 4)
}

func TestChat(t *testing.T) {
	f := newFixture(t)
	citizen := f.login("alice@example.com", models.Citizen)
	admin := f.login("admin@civicsync.com", models.Admin)

	w := f.do(http.MethodPost, "/api/chat", citizen, gin.H{"message": "Hello ward 12"})
	require.Equal(t, http.StatusCreated, w.Code)
	msg := decode[models.ChatMessage](t, w)
	assert.Equal(t, "alice", msg.Sender)
	assert.False(t, msg.IsAdmin)

	w = f.do(http.MethodPost, "/api/chat", admin, gin.H{"message": "Crew on the way"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode[models.ChatMessage](t, w).IsAdmin)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/chat", citizen, gin.H{"message": "  "}).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/chat", "", gin.H{"message": "hi"}).Code)

	assert.Equal(t, http.StatusForbidden,
		f.do(http.MethodPost, "/api/chat/announcement", citizen, gin.H{"title": "t", "message": "m"}).Code)
	w = f.do(http.MethodPost, "/api/chat/announcement", admin, gin.H{"title": "Water cut", "message": "Sunday"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "📢 Water cut: Sunday", decode[models.ChatMessage](t, w).Message)

	w = f.do(http.MethodGet, "/api/chat?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	recent := decode[[]models.ChatMessage](t, w)
	require.Len(t, recent, 2)
	assert.Equal(t, "Crew on the way", recent[0].Message)

	assert.Len(t, decode[[]models.ChatMessage](t, f.do(http.MethodGet, "/api/chat", "", nil)), 7)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/chat?limit=-3", "", nil).Code)
}

func TestGetEvent(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/events/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", decode[models.Event](t, w).ID)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/events/missing", "", nil).Code)
}

func TestUpcomingEvents(t *testing.T) {
	f := newFixture(t)
	admin := f.login("admin@civicsync.com", models.Admin)

	for _, date := range []string{"2099-06-01", "2099-01-15"} {
		body := gin.H{
			"title":          "Ward meeting " + date,
			"description":    "Scheduled far ahead",
			"date":           date,
			"location":       "Ward Office",
			"type":           "meeting",
			"volunteerSlots": 0,
		}
		require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/events", admin, body).Code)
	}

	w := f.do(http.MethodGet, "/api/events?upcoming=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	next := decode[[]models.Event](t, w)
	require.Len(t, next, 1)
	assert.Equal(t, "2099-01-15", next[0].Date)

	// the seeded events are dated around March 2026
	w = f.do(http.MethodGet, "/api/events?upcoming=0", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Event](t, w), 2)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/events?upcoming=soon", "", nil).Code)
}

func TestCitizenStats(t *testing.T) {
	f := newFixture(t)
	citizen := f.login("alice@example.com", models.Citizen)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/issue/stats", "", nil).Code)

	w := f.do(http.MethodGet, "/api/issue/stats", citizen, nil)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[store.Stats](t, w)
	assert.Equal(t, 8, st.TotalIssues)
	assert.Equal(t, 0, st.MyIssues)
	assert.Equal(t, 3, st.TotalEvents)
}
