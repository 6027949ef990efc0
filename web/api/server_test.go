package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hochfrequenz/codigo-course-studio/internal/coursegen"
	"github.com/hochfrequenz/codigo-course-studio/internal/coursestore"
	"github.com/hochfrequenz/codigo-course-studio/internal/domain"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type mockGenerator struct {
	course *domain.Course
	path   domain.LearningPath
	guide  domain.Guidance
	err    error
	users  []string
}

func (m *mockGenerator) GenerateCourse(_ context.Context, userID string, req domain.CourseRequest) (*domain.Course, error) {
	m.users = append(m.users, userID)
	if field := req.MissingField(); field != "" {
		return nil, coursegen.ErrMissingField
	}
	return m.course, m.err
}

func (m *mockGenerator) LearningPath(_ context.Context, userID string, _ domain.LearningPathRequest) (domain.LearningPath, error) {
	m.users = append(m.users, userID)
	return m.path, m.err
}

func (m *mockGenerator) Guidance(_ context.Context, userID string, _ domain.GuidanceRequest) (domain.Guidance, error) {
	m.users = append(m.users, userID)
	return m.guide, m.err
}

func newTestServer(t *testing.T, gen Generator) *Server {
	t.Helper()
	store, err := coursestore.New(":memory:")
	if err != nil {
		t.Fatalf("coursestore.New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	s := NewServer(gen, store, Options{}, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

const validCourseBody = `{"skills":"foto","knowledge":"luz","passions":"viajes","niche":"mochileros","language":"Español"}`

func TestHealthAndGreeting(t *testing.T) {
	s := newTestServer(t, &mockGenerator{})

	w := do(t, s, "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}

	w = do(t, s, "GET", "/api/valeria/greeting", "")
	got := decode[map[string]string](t, w)
	if got["message"] != "Hola, soy Valeria. ¿En qué te puedo ayudar hoy?" {
		t.Errorf("greeting = %q", got["message"])
	}
}

func TestLaunchPlanHandler(t *testing.T) {
	s := newTestServer(t, &mockGenerator{})

	tests := []struct {
		body      string
		wantStage domain.Stage
		wantTasks int
	}{
		{`{"stageDescription":"Estoy en cero"}`, domain.StageNothingStarted, 8},
		{`{"stageDescription":"Tengo el contenido listo"}`, domain.StageContentReady, 7},
		{`{"stageDescription":""}`, domain.StageUnclear, 2},
		{`{}`, domain.StageUnclear, 2},
	}
	for _, tt := range tests {
		w := do(t, s, "POST", "/api/launch-plan", tt.body)
		if w.Code != http.StatusOK {
			t.Fatalf("POST %s status = %d, want 200", tt.body, w.Code)
		}
		resp := decode[LaunchPlanResponse](t, w)
		if resp.Stage != tt.wantStage {
			t.Errorf("stage = %q, want %q", resp.Stage, tt.wantStage)
		}
		if len(resp.Tasks) != tt.wantTasks {
			t.Errorf("tasks = %d, want %d", len(resp.Tasks), tt.wantTasks)
		}
	}

	if w := do(t, s, "POST", "/api/launch-plan", "not json"); w.Code != http.StatusBadRequest {
		t.Errorf("invalid body status = %d, want 400", w.Code)
	}
}

func TestGenerateCourseHandler(t *testing.T) {
	course := &domain.Course{
		CourseTitle: "Foto de viaje",
		Modules:     []domain.Module{{ID: "mod-1", ModuleTitle: "Luz"}},
	}
	gen := &mockGenerator{course: course}
	s := newTestServer(t, gen)

	w := do(t, s, "POST", "/api/generate-course", validCourseBody, "X-User-ID", "alice")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[struct {
		Data domain.Course `json:"data"`
	}](t, w)
	if resp.Data.CourseTitle != "Foto de viaje" {
		t.Errorf("courseTitle = %q", resp.Data.CourseTitle)
	}
	if len(gen.users) != 1 || gen.users[0] != "alice" {
		t.Errorf("generator users = %v, want [alice]", gen.users)
	}
}

func TestGenerateCourseHandler_MissingFields(t *testing.T) {
	gen := &mockGenerator{}
	s := newTestServer(t, gen)

	for _, body := range []string{
		`{"skills":"foto"}`,
		`{"skills":"foto","knowledge":"luz","passions":"viajes","niche":"mochileros","language":"  "}`,
	} {
		w := do(t, s, "POST", "/api/generate-course", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400 for %s", w.Code, body)
		}
		if got := decode[map[string]string](t, w); got["error"] != "Missing required input fields." {
			t.Errorf("error = %q", got["error"])
		}
	}
	if len(gen.users) != 0 {
		t.Errorf("generator called %d times, want 0", len(gen.users))
	}
}

func TestGenerationHandlers_MalformedBody(t *testing.T) {
	gen := &mockGenerator{}
	s := newTestServer(t, gen)

	tests := []struct {
		path    string
		wantErr string
	}{
		{"/api/generate-course", "Failed to generate course"},
		{"/api/learning-path", "Failed to generate learning path"},
		{"/api/guidance", "Failed to generate guidance"},
	}
	for _, tt := range tests {
		w := do(t, s, "POST", tt.path, `{"skills":`)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("POST %s status = %d, want 500", tt.path, w.Code)
			continue
		}
		resp := decode[FailureResponse](t, w)
		if resp.Error != tt.wantErr {
			t.Errorf("POST %s error = %q, want %q", tt.path, resp.Error, tt.wantErr)
		}
		if resp.Details == "" {
			t.Errorf("POST %s details empty", tt.path)
		}
	}
	if len(gen.users) != 0 {
		t.Errorf("generator called %d times, want 0", len(gen.users))
	}
}

func TestGenerateCourseHandler_AnonymousUser(t *testing.T) {
	gen := &mockGenerator{course: &domain.Course{CourseTitle: "x", Modules: []domain.Module{}}}
	s := newTestServer(t, gen)

	do(t, s, "POST", "/api/generate-course", validCourseBody, "X-User-ID", "   ")
	do(t, s, "POST", "/api/generate-course", validCourseBody)
	if len(gen.users) != 2 || gen.users[0] != "" || gen.users[1] != "" {
		t.Errorf("generator users = %q, want two anonymous calls", gen.users)
	}
}

func TestGenerateCourseHandler_SentinelIsOK(t *testing.T) {
	s := newTestServer(t, &mockGenerator{course: domain.FailedCourse()})

	w := do(t, s, "POST", "/api/generate-course", validCourseBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"courseTitle":"Error"`) {
		t.Errorf("body = %s, want sentinel course", w.Body.String())
	}
}

func TestGenerateCourseHandler_GeneratorError(t *testing.T) {
	s := newTestServer(t, &mockGenerator{err: errors.New("quota exceeded")})

	w := do(t, s, "POST", "/api/generate-course", validCourseBody)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	resp := decode[FailureResponse](t, w)
	if resp.Error != "Failed to generate course" || resp.Details != "quota exceeded" {
		t.Errorf("response = %+v", resp)
	}
}

func TestLearningPathAndGuidanceHandlers(t *testing.T) {
	gen := &mockGenerator{
		path:  domain.LearningPath{LearningPath: "Curso A"},
		guide: domain.Guidance{Guidance: "Empieza hoy"},
	}
	s := newTestServer(t, gen)

	w := do(t, s, "POST", "/api/learning-path", `{"userProgress":"a","userInterests":"b","userNeeds":"c","availableCourses":"d"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"learningPath":"Curso A"`) {
		t.Errorf("learning path = %d %s", w.Code, w.Body.String())
	}
	if w := do(t, s, "POST", "/api/learning-path", `{"userProgress":"a"}`); w.Code != http.StatusBadRequest {
		t.Errorf("learning path missing field status = %d, want 400", w.Code)
	}

	w = do(t, s, "POST", "/api/guidance", `{"userInput":"¿Qué hago?"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"guidance":"Empieza hoy"`) {
		t.Errorf("guidance = %d %s", w.Code, w.Body.String())
	}
	if w := do(t, s, "POST", "/api/guidance", `{"userProgress":"a"}`); w.Code != http.StatusBadRequest {
		t.Errorf("guidance missing field status = %d, want 400", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &mockGenerator{})

	tests := []struct{ method, path string }{
		{"POST", "/api/health"},
		{"GET", "/api/launch-plan"},
		{"GET", "/api/generate-course"},
		{"DELETE", "/api/courses"},
		{"POST", "/api/courses/abc"},
		{"POST", "/api/stats"},
	}
	for _, tt := range tests {
		w := do(t, s, tt.method, tt.path, "", "X-User-ID", "alice")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want 405", tt.method, tt.path, w.Code)
		}
	}
}

func TestCoursesRequireSession(t *testing.T) {
	s := newTestServer(t, &mockGenerator{})

	for _, tt := range []struct{ method, path string }{
		{"GET", "/api/courses"},
		{"POST", "/api/courses"},
		{"GET", "/api/courses/course-1"},
		{"DELETE", "/api/courses/course-1"},
	} {
		w := do(t, s, tt.method, tt.path, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tt.method, tt.path, w.Code)
		}
	}
}

func TestCourseLifecycle(t *testing.T) {
	s := newTestServer(t, &mockGenerator{})

	body := `{"skills":"foto","language":"Español","courseTitle":"Foto","courseDescription":"d",
		"modules":[{"moduleTitle":"Luz","moduleDescription":"","lessons":[{"lessonTitle":"Hora dorada","topics":["a"]}]}]}`
	w := do(t, s, "POST", "/api/courses", body, "X-User-ID", "alice")
	if w.Code != http.StatusCreated {
		t.Fatalf("save status = %d, want 201: %s", w.Code, w.Body.String())
	}
	saved := decode[struct {
		Data domain.UserCourse `json:"data"`
	}](t, w).Data
	if saved.ID == "" || saved.UserID != "alice" || saved.Skills != "foto" {
		t.Fatalf("saved = %+v", saved)
	}
	if saved.Modules[0].ID == "" || saved.Modules[0].Lessons[0].ID == "" {
		t.Error("saved course is missing module or lesson IDs")
	}

	w = do(t, s, "GET", "/api/courses", "", "X-User-ID", "alice")
	list := decode[struct {
		Data []domain.UserCourse `json:"data"`
	}](t, w).Data
	if len(list) != 1 {
		t.Errorf("alice's courses = %d, want 1", len(list))
	}

	if w := do(t, s, "GET", "/api/courses/"+saved.ID, "", "X-User-ID", "bob"); w.Code != http.StatusNotFound {
		t.Errorf("bob GET status = %d, want 404", w.Code)
	}

	update := `{"title":"Foto 2","description":"nueva","modules":[{"id":"` + saved.Modules[0].ID + `","moduleTitle":"Luz","lessons":[]},{"moduleTitle":"Color","lessons":[]}]}`
	w = do(t, s, "PUT", "/api/courses/"+saved.ID, update, "X-User-ID", "alice")
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200: %s", w.Code, w.Body.String())
	}
	updated := decode[struct {
		Data domain.UserCourse `json:"data"`
	}](t, w).Data
	if updated.Title != "Foto 2" || len(updated.Modules) != 2 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Modules[0].ID != saved.Modules[0].ID {
		t.Errorf("module ID = %q, want preserved %q", updated.Modules[0].ID, saved.Modules[0].ID)
	}
	if updated.Modules[1].ID == "" {
		t.Error("new module has no ID")
	}

	if w := do(t, s, "DELETE", "/api/courses/"+saved.ID, "", "X-User-ID", "bob"); w.Code != http.StatusNotFound {
		t.Errorf("bob DELETE status = %d, want 404", w.Code)
	}
	if w := do(t, s, "DELETE", "/api/courses/"+saved.ID, "", "X-User-ID", "alice"); w.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", w.Code)
	}
	if w := do(t, s, "GET", "/api/courses/"+saved.ID, "", "X-User-ID", "alice"); w.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", w.Code)
	}
}

func TestSaveCourseRejectsSentinel(t *testing.T) {
	s := newTestServer(t, &mockGenerator{})

	w := do(t, s, "POST", "/api/courses", `{"courseTitle":"Error","modules":[]}`, "X-User-ID", "alice")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestStatsHandler(t *testing.T) {
	s := newTestServer(t, &mockGenerator{})

	w := do(t, s, "GET", "/api/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if stats := decode[domain.GenerationStats](t, w); stats.Total != 0 {
		t.Errorf("Total = %d, want 0", stats.Total)
	}
}

// leakOptions ignores the pooled goroutines of the test store and HTTP client,
// and the stats worker the Gemini SDK's dependencies start at init
var leakOptions = []goleak.Option{
	goleak.IgnoreCurrent(),
	goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
	goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
}

func waitForClients(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for s.hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want %d", s.hub.ClientCount(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSSEStream(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	s := newTestServer(t, &mockGenerator{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	waitForClients(t, s, 1)
	s.Broadcast(Event{Type: EventCourseDeleted, Data: CourseEvent{ID: "course-1"}})

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if line != "event: course_deleted\n" {
		t.Errorf("event line = %q", line)
	}
	line, _ = reader.ReadString('\n')
	if !strings.HasPrefix(line, "data: ") || !strings.Contains(line, `"id":"course-1"`) {
		t.Errorf("data line = %q", line)
	}

	s.Close()
}

func TestWebSocketStream(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	s := newTestServer(t, &mockGenerator{course: &domain.Course{CourseTitle: "Foto", Modules: []domain.Module{}}})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	waitForClients(t, s, 1)
	if w := do(t, s, "POST", "/api/generate-course", validCourseBody); w.Code != http.StatusOK {
		t.Fatalf("generate status = %d", w.Code)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev struct {
		Type string      `json:"type"`
		Data CourseEvent `json:"data"`
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventCourseGenerated || ev.Data.Title != "Foto" {
		t.Errorf("event = %+v", ev)
	}

	s.Close()
}

func TestEventHub_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	h := NewEventHub()
	go h.Run()

	client, ok := h.Subscribe()
	if !ok {
		t.Fatal("Subscribe failed on running hub")
	}
	h.Stop()
	h.Stop()

	if _, open := <-client; open {
		t.Error("client channel still open after Stop")
	}
	if _, ok := h.Subscribe(); ok {
		t.Error("Subscribe succeeded after Stop")
	}
	h.Broadcast(Event{Type: EventCourseSaved})
}

func TestOriginAllowed(t *testing.T) {
	store, err := coursestore.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", nil, "", true},
		{"same origin", nil, "http://studio.local", true},
		{"cross origin by default", nil, "https://evil.example", false},
		{"listed origin", []string{"https://app.example.com/"}, "https://APP.example.com", true},
		{"unlisted origin", []string{"https://app.example.com"}, "https://evil.example", false},
		{"wildcard", []string{"*"}, "https://anything.example", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&mockGenerator{}, store, Options{AllowedOrigins: tt.allowed}, zap.NewNop())
			defer s.Close()

			r := httptest.NewRequest("GET", "http://studio.local/api/events", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := s.originAllowed(r); got != tt.want {
				t.Errorf("originAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestEventStreamsRejectForeignOrigin(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	store, err := coursestore.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	s := NewServer(&mockGenerator{}, store, Options{AllowedOrigins: []string{"https://app.example.com"}}, zap.NewNop())
	defer s.Close()

	w := do(t, s, "GET", "/api/events", "", "Origin", "https://evil.example")
	if w.Code != http.StatusForbidden {
		t.Errorf("SSE status = %d, want 403", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want unset", got)
	}

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://evil.example"}})
	if err == nil {
		t.Fatal("Dial from foreign origin succeeded, want handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("handshake response = %v, want 403", resp)
	}
	if resp != nil {
		resp.Body.Close()
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://app.example.com"}})
	if err != nil {
		t.Fatalf("Dial from allowed origin: %v", err)
	}
	conn.Close()
}
