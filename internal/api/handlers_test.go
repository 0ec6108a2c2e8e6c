package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/staysocial/staysocial-backend/internal/analytics"
	"github.com/staysocial/staysocial-backend/internal/approvals"
	"github.com/staysocial/staysocial-backend/internal/calendar"
	"github.com/staysocial/staysocial-backend/internal/db"
	"github.com/staysocial/staysocial-backend/internal/generator"
	"github.com/staysocial/staysocial-backend/internal/jobs"
	"github.com/staysocial/staysocial-backend/internal/media"
	"github.com/staysocial/staysocial-backend/internal/platforms"
	"github.com/staysocial/staysocial-backend/internal/posts"
	"github.com/staysocial/staysocial-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Wednesday
var fixedNow = time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	router    http.Handler
	posts     *posts.Service
	approvals *approvals.Service
}

func newTestEnv(t *testing.T, cfg RouterConfig) *testEnv {
	t.Helper()
	logger := zap.NewNop().Sugar()
	ctx := context.Background()

	database := db.NewInMemoryDatabase(logger)
	require.NoError(t, db.ConnectAndMigrate(ctx, database, db.AllSchemas()))
	t.Cleanup(func() { _ = database.Disconnect(ctx) })

	cache := store.NewMemoryCache(logger, nil)
	postsSvc := posts.NewService(database, cache, nil, logger)
	approvalsSvc := approvals.NewService(database, postsSvc, cache, nil, logger)

	genRunner := jobs.NewRunner(jobs.Config{Kind: "generate", Channel: store.ChannelTasks}, logger, nil, cache)
	uploadRunner := jobs.NewRunner(jobs.Config{Kind: "upload", Channel: store.ChannelTasks}, logger, nil, cache)
	t.Cleanup(genRunner.Close)
	t.Cleanup(uploadRunner.Close)

	catalog := platforms.NewService()
	handler := NewHandler(Deps{
		Posts:     postsSvc,
		Approvals: approvalsSvc,
		Generator: generator.NewService(generator.NewTemplateProvider(catalog), genRunner, cache, 0, logger),
		Library:   media.NewLibrary(database, media.PlaceholderUploader{}, uploadRunner, cache, 0, nil, logger),
		Analytics: analytics.NewService(postsSvc, approvalsSvc, cache, time.Minute, time.UTC, logger),
		Platforms: catalog,
		Database:  database,
		Cache:     cache,
		Location:  time.UTC,
	}, logger)
	handler.now = func() time.Time { return fixedNow }

	return &testEnv{
		router:    handler.Routes(NewMiddleware(logger, nil), cfg),
		posts:     postsSvc,
		approvals: approvalsSvc,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(SessionHeader, "test-session")

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedPost(t *testing.T, title string, platform posts.Platform, date, clock, kind string) posts.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), posts.Draft{
		Title:         title,
		Content:       title + " #Hotel",
		Platform:      platform,
		ScheduledDate: date,
		ScheduledTime: clock,
		Type:          kind,
	})
	require.NoError(t, err)
	return p
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decode(t, rec, &resp)
	return resp.Code
}

func TestCalendarWeek(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})
	env.seedPost(t, "Brunch", posts.Instagram, "2026-03-09", "10:00", "promotion")
	env.seedPost(t, "Jazz Night", posts.Facebook, "2026-03-09", "9:00 AM", "event")
	env.seedPost(t, "Next week", posts.Twitter, "2026-03-15", "12:00", "announcement")

	rec := env.do(t, http.MethodGet, "/v1/calendar/week?anchor=2026-03-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var week calendar.WeekView
	decode(t, rec, &week)
	assert.Equal(t, "2026-03-08", week.Days[0].Key)
	assert.Equal(t, "2026-03-14", week.Days[6].Key)
	require.Len(t, week.Days[1].Posts, 2)
	assert.Equal(t, "Brunch", week.Days[1].Posts[0].Title)
	assert.Equal(t, "Jazz Night", week.Days[1].Posts[1].Title)
	assert.True(t, week.Days[3].IsToday)
	for _, i := range []int{0, 2, 4, 5, 6} {
		assert.Empty(t, week.Days[i].Posts)
	}

	rec = env.do(t, http.MethodGet, "/v1/calendar/week?anchor=2026-03-11&platform=Facebook", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &week)
	require.Len(t, week.Days[1].Posts, 1)
	assert.Equal(t, "Jazz Night", week.Days[1].Posts[0].Title)

	rec = env.do(t, http.MethodGet, "/v1/calendar/week", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &week)
	assert.Equal(t, "2026-03-08", week.Days[0].Key)
}

func TestCalendarWeek_InvalidAnchor(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	rec := env.do(t, http.MethodGet, "/v1/calendar/week?anchor=03/11/2026", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_DATE", errorCode(t, rec))
}

func TestCalendarNavigate(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	tests := []struct {
		query  string
		anchor string
		start  string
	}{
		{"anchor=2026-03-11&direction=next", "2026-03-18", "2026-03-15"},
		{"anchor=2026-03-11&direction=previous", "2026-03-04", "2026-03-01"},
		{"anchor=2026-03-11&direction=previous&granularity=month", "2026-02-11", "2026-02-08"},
		{"anchor=2025-12-30&direction=today", "2026-03-11", "2026-03-08"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/v1/calendar/navigate?"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var nav NavigateDTO
			decode(t, rec, &nav)
			assert.Equal(t, tt.anchor, nav.Anchor)
			assert.Equal(t, tt.start, nav.Start)
		})
	}

	rec := env.do(t, http.MethodGet, "/v1/calendar/navigate?direction=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_DIRECTION", errorCode(t, rec))

	rec = env.do(t, http.MethodGet, "/v1/calendar/navigate?direction=next&granularity=year", nil)
	assert.Equal(t, "INVALID_GRANULARITY", errorCode(t, rec))
}

func TestCalendarDayAndList(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})
	env.seedPost(t, "Afternoon Tea", posts.Instagram, "2026-03-12", "3:30 PM", "menu")
	env.seedPost(t, "Morning Yoga", posts.Instagram, "2026-03-12", "07:45", "event")
	env.seedPost(t, "Earlier", posts.LinkedIn, "2026-03-10", "18:00", "announcement")

	rec := env.do(t, http.MethodGet, "/v1/calendar/day/2026-03-12?type=event", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var day DayDTO
	decode(t, rec, &day)
	require.Len(t, day.Posts, 1)
	assert.Equal(t, "Morning Yoga", day.Posts[0].Title)
	assert.False(t, day.IsToday)

	rec = env.do(t, http.MethodGet, "/v1/calendar/day/2026-03-20", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"posts":[]`)

	rec = env.do(t, http.MethodGet, "/v1/calendar/list?platform=instagram", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListDTO
	decode(t, rec, &list)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "Morning Yoga", list.Entries[0].Post.Title)
	assert.Equal(t, "Afternoon Tea", list.Entries[1].Post.Title)

	rec = env.do(t, http.MethodGet, "/v1/calendar/list?platform=myspace", nil)
	decode(t, rec, &list)
	assert.Zero(t, list.Count)
}

func TestTypeFilterIgnoresCase(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})
	created := env.seedPost(t, "Spa Morning", posts.Instagram, "2026-03-10", "09:00", "Wellness")
	assert.Equal(t, "wellness", created.Type)

	for _, kind := range []string{"Wellness", "wellness", "WELLNESS"} {
		rec := env.do(t, http.MethodGet, "/v1/calendar/day/2026-03-10?type="+kind, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var day DayDTO
		decode(t, rec, &day)
		assert.Len(t, day.Posts, 1, kind)

		rec = env.do(t, http.MethodGet, "/v1/calendar/list?type="+kind, nil)
		var list ListDTO
		decode(t, rec, &list)
		assert.Equal(t, 1, list.Count, kind)

		rec = env.do(t, http.MethodGet, "/v1/posts?type="+kind, nil)
		var items PostsDTO
		decode(t, rec, &items)
		assert.Equal(t, 1, items.Count, kind)
	}
}

func TestPostsCRUD(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	rec := env.do(t, http.MethodPost, "/v1/posts", posts.Draft{Title: "No content", Platform: posts.Instagram})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_POST", errorCode(t, rec))

	rec = env.do(t, http.MethodPost, "/v1/posts", map[string]string{"title": "x", "bogus": "y"})
	assert.Equal(t, "INVALID_JSON", errorCode(t, rec))

	rec = env.do(t, http.MethodPost, "/v1/posts", posts.Draft{
		Title:         "Spa Day",
		Content:       "Relax with us #Spa",
		Platform:      posts.Instagram,
		ScheduledDate: "2026-03-13",
		ScheduledTime: "11:00 AM",
		Type:          "promotion",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created posts.Post
	decode(t, rec, &created)
	assert.Equal(t, posts.StatusDraft, created.Status)
	assert.Equal(t, []string{"#Spa"}, created.Hashtags)

	rec = env.do(t, http.MethodPatch, "/v1/posts/"+created.ID+"/status", StatusRequest{Status: posts.StatusScheduled})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated posts.Post
	decode(t, rec, &updated)
	assert.Equal(t, posts.StatusScheduled, updated.Status)

	rec = env.do(t, http.MethodGet, "/v1/posts?status=scheduled", nil)
	var list PostsDTO
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Count)

	rec = env.do(t, http.MethodDelete, "/v1/posts/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/posts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestApprovalWorkflow(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})
	post := env.seedPost(t, "Valentine Dinner", posts.Instagram, "2026-03-14", "19:00", "menu")

	rec := env.do(t, http.MethodPost, "/v1/approvals", approvals.Submission{
		Title:     "Valentine Dinner",
		Platform:  "Instagram",
		Content:   "Romantic dinner for two",
		Submitter: approvals.Submitter{Name: "Min-ji Park"},
		PostID:    post.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var item approvals.Item
	decode(t, rec, &item)
	assert.Equal(t, approvals.StatusPending, item.Status)
	assert.Equal(t, "MP", item.Submitter.Initials)

	rec = env.do(t, http.MethodGet, "/v1/approvals?status=pending", nil)
	var list ApprovalsDTO
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 1, list.Pending)

	rec = env.do(t, http.MethodPost, "/v1/approvals/"+item.ID+"/reject", RejectRequest{Reviewer: "GM"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REASON_REQUIRED", errorCode(t, rec))

	rec = env.do(t, http.MethodPost, "/v1/approvals/"+item.ID+"/approve", ApproveRequest{Reviewer: "GM"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &item)
	assert.Equal(t, approvals.StatusApproved, item.Status)

	scheduled, err := env.posts.Get(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, posts.StatusScheduled, scheduled.Status)

	rec = env.do(t, http.MethodPost, "/v1/approvals/"+item.ID+"/approve", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, rec))

	rec = env.do(t, http.MethodPost, "/v1/approvals/missing/resubmit", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApprovalRejectAndResubmit(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})
	item, err := env.approvals.Submit(context.Background(), approvals.Submission{
		Title:     "Rooftop Bar Opening",
		Platform:  "Naver",
		Content:   "Opening night",
		Submitter: approvals.Submitter{Name: "David Chen"},
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/v1/approvals/"+item.ID+"/reject", RejectRequest{Reviewer: "GM", Reason: "Wrong date"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &item)
	assert.Equal(t, approvals.StatusRejected, item.Status)
	assert.Equal(t, "Wrong date", item.Reason)

	rec = env.do(t, http.MethodPost, "/v1/approvals/"+item.ID+"/resubmit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &item)
	assert.Equal(t, approvals.StatusPending, item.Status)
	assert.Empty(t, item.Reason)

	rec = env.do(t, http.MethodGet, "/v1/approvals?search=rooftop", nil)
	var list ApprovalsDTO
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Count)

	rec = env.do(t, http.MethodDelete, "/v1/approvals/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func waitTask(t *testing.T, env *testEnv, url string) map[string]interface{} {
	t.Helper()
	var view map[string]interface{}
	require.Eventually(t, func() bool {
		rec := env.do(t, http.MethodGet, url, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		view = nil
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			return false
		}
		return view["status"] != string(jobs.StatusPending)
	}, 2*time.Second, 10*time.Millisecond)
	return view
}

func TestGeneratorJobs(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	rec := env.do(t, http.MethodGet, "/v1/generator/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "promo-event")

	rec = env.do(t, http.MethodPost, "/v1/generator/jobs", generator.Request{TemplateID: "nope", Details: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_GENERATION_REQUEST", errorCode(t, rec))

	rec = env.do(t, http.MethodPost, "/v1/generator/jobs", generator.Request{
		TemplateID: "promo-event",
		Details:    "Jazz night on the rooftop",
		Platform:   "twitter",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	var accepted TaskAcceptedDTO
	decode(t, rec, &accepted)
	assert.Equal(t, rec.Header().Get("Location"), accepted.StatusURL)

	view := waitTask(t, env, accepted.StatusURL)
	assert.Equal(t, string(jobs.StatusCompleted), view["status"])
	result, ok := view["result"].(map[string]interface{})
	require.True(t, ok)
	assert.LessOrEqual(t, len([]rune(result["content"].(string))), 280)

	rec = env.do(t, http.MethodGet, "/v1/generator/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Count int `json:"count"`
	}
	decode(t, rec, &history)
	assert.Equal(t, 1, history.Count)

	rec = env.do(t, http.MethodDelete, "/v1/generator/jobs/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGeneratorPreview(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	rec := env.do(t, http.MethodPost, "/v1/generator/preview", generator.Request{PostType: "holiday", Date: "2026-12-24"})
	require.Equal(t, http.StatusOK, rec.Code)
	var res generator.Result
	decode(t, rec, &res)
	assert.NotEmpty(t, res.Content)
	assert.Equal(t, "holiday", res.PostType)
}

func TestAssetUploads(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	rec := env.do(t, http.MethodPost, "/v1/assets", AssetUploadRequest{Name: "lobby.jpg", Size: 1024, Tags: []string{"Lobby"}})
	require.Equal(t, http.StatusAccepted, rec.Code)
	var accepted TaskAcceptedDTO
	decode(t, rec, &accepted)

	view := waitTask(t, env, accepted.StatusURL)
	require.Equal(t, string(jobs.StatusCompleted), view["status"])
	asset := view["result"].(map[string]interface{})
	assert.Equal(t, media.PlaceholderURL, asset["url"])

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("tags", "pool,summer"))
	part, err := form.CreateFormFile("file", "pool.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake png bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/assets", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(SessionHeader, "test-session")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	decode(t, rec, &accepted)
	view = waitTask(t, env, accepted.StatusURL)
	require.Equal(t, string(jobs.StatusCompleted), view["status"])

	rec = env.do(t, http.MethodGet, "/v1/assets?search=summer", nil)
	var list struct {
		Items []media.Asset `json:"items"`
		Count int           `json:"count"`
	}
	decode(t, rec, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "pool.png", list.Items[0].Name)
	assert.Equal(t, int64(len("fake png bytes")), list.Items[0].Size)

	rec = env.do(t, http.MethodDelete, "/v1/assets/"+list.Items[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodGet, "/v1/assets/"+list.Items[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/assets", AssetUploadRequest{Name: ""})
	assert.Equal(t, "INVALID_ASSET", errorCode(t, rec))
}

func TestAnalyticsAndPlatforms(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	rec := env.do(t, http.MethodGet, "/v1/analytics/platforms?platform=twitter", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Platforms []analytics.PlatformStats `json:"platforms"`
	}
	decode(t, rec, &stats)
	require.Len(t, stats.Platforms, 1)
	assert.Equal(t, "20.47", stats.Platforms[0].EngagementRate.String())

	rec = env.do(t, http.MethodGet, "/v1/analytics/top-content?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var top struct {
		Items []analytics.ContentItem `json:"items"`
	}
	decode(t, rec, &top)
	require.Len(t, top.Items, 2)
	assert.Equal(t, 92, top.Items[0].PerformanceScore)

	rec = env.do(t, http.MethodGet, "/v1/analytics/top-content?limit=-1", nil)
	assert.Equal(t, "INVALID_LIMIT", errorCode(t, rec))

	rec = env.do(t, http.MethodGet, "/v1/dashboard/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary analytics.Summary
	decode(t, rec, &summary)
	assert.NotNil(t, summary.Upcoming)

	rec = env.do(t, http.MethodGet, "/v1/platforms?schedulable=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var catalog struct {
		Platforms []platforms.Platform `json:"platforms"`
	}
	decode(t, rec, &catalog)
	assert.Len(t, catalog.Platforms, 4)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = env.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthDTO
	decode(t, rec, &health)
	assert.Equal(t, "ready", health.Status)
	assert.Equal(t, "ok (in-memory)", health.Checks["cache"])
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, RouterConfig{RateLimitRPM: 1})

	rec := env.do(t, http.MethodGet, "/v1/platforms", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/platforms", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))

	// health checks are outside the limiter
	rec = env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoverer(t *testing.T) {
	m := NewMiddleware(zap.NewNop().Sugar(), nil)
	h := m.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
}

func TestRequestIDPassthrough(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
