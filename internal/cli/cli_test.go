package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"hub/internal/api"
	"hub/internal/config"
	"hub/internal/service"
	"hub/internal/session"
)

type request struct {
	method string
	path   string
	query  string
	body   string
}

// backend serves canned bodies keyed by "METHOD /path/". A sequence
// entry overrides the status per request; its last value repeats.
type backend struct {
	mu        sync.Mutex
	responses map[string]string
	statuses  map[string]int
	sequence  map[string][]int
	requests  []request
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.requests = append(b.requests, request{r.Method, r.URL.Path, r.URL.RawQuery, string(body)})
	resp, ok := b.responses[key]
	status := b.statuses[key]
	if seq := b.sequence[key]; len(seq) > 0 {
		status = seq[0]
		if len(seq) > 1 {
			b.sequence[key] = seq[1:]
		}
	}
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if status != 0 {
		w.WriteHeader(status)
	}
	w.Write([]byte(resp))
}

func (b *backend) find(method, path string) (request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r.method == method && r.path == path {
			return r, true
		}
	}
	return request{}, false
}

var testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type harness struct {
	app    *App
	out    *bytes.Buffer
	errOut *bytes.Buffer
	sess   *session.Session
}

func newHarness(t *testing.T, b *backend, loggedIn bool) *harness {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	sess := session.New(nil)
	if loggedIn {
		sess.Set(context.Background(), "acc", "ref")
	}
	h := &harness{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}, sess: sess}
	h.app = &App{
		Hub:    service.New(api.New(srv.URL, sess), 20),
		Config: &config.Config{PageSize: 20, UnreadInterval: time.Minute},
		Out:    h.out,
		Err:    h.errOut,
		In:     strings.NewReader(""),
		Now:    func() time.Time { return testNow },
	}
	return h
}

func (h *harness) run(args ...string) int {
	return Run(args, h.app)
}

func TestResolve(t *testing.T) {
	type item struct {
		id    int64
		title string
	}
	items := []item{
		{1, "Write report"},
		{2, "Review report draft"},
		{3, "Book flights"},
		{42, "Pay invoice"},
	}
	id := func(i item) int64 { return i.id }
	title := func(i item) string { return i.title }

	tests := []struct {
		ref     string
		want    int64
		wantErr string
	}{
		{ref: "42", want: 42},
		{ref: "write report", want: 1},
		{ref: "flights", want: 3},
		{ref: "zzz", wantErr: "nothing matches"},
		{ref: "  ", wantErr: "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolve(items, tt.ref, id, title)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("resolve(%q) error = %v, want %q", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve(%q): %v", tt.ref, err)
			}
			if got.id != tt.want {
				t.Errorf("resolve(%q) = %d, want %d", tt.ref, got.id, tt.want)
			}
		})
	}
}

func TestResolve_Ambiguous(t *testing.T) {
	items := []string{"report a", "report b"}
	_, err := resolve(items, "report", func(s string) int64 { return int64(len(s)) }, func(s string) string { return s })
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	h := newHarness(t, &backend{}, true)
	if code := h.run("frobnicate"); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(h.errOut.String(), "Unknown command: frobnicate") {
		t.Errorf("stderr = %q", h.errOut.String())
	}
}

func TestRun_TaskListGroupsByDay(t *testing.T) {
	b := &backend{responses: map[string]string{
		"GET /tasks/": `[
			{"id":1,"title":"Write report","status":"todo","due_date":"2024-03-15","tags":[{"id":1,"name":"work"}]},
			{"id":2,"title":"Book flights","status":"in_progress","due_date":"2024-03-17"},
			{"id":3,"title":"Someday","status":"todo","due_date":null},
			{"id":4,"title":"Call bank","status":"done","due_date":"2024-03-15"}
		]`,
	}}
	h := newHarness(t, b, true)

	if code := h.run("task", "list"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, h.errOut.String())
	}

	out := h.out.String()
	for _, want := range []string{
		"-- Today --",
		"[1]   Write report  #work",
		"[4] x Call bank",
		"-- Sun Mar 17 --",
		"[2] ~ Book flights",
		"-- No due date --",
		"4 task(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Today") > strings.Index(out, "No due date") {
		t.Errorf("undated group should come last:\n%s", out)
	}
}

func TestRun_TaskListFilters(t *testing.T) {
	b := &backend{responses: map[string]string{
		"GET /tasks/": `[
			{"id":1,"title":"Write report","status":"todo","due_date":"2024-03-15"},
			{"id":2,"title":"Review report","status":"done","due_date":"2024-03-15"}
		]`,
	}}
	h := newHarness(t, b, true)

	if code := h.run("task", "list", "-status", "done", "-q", "report"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, h.errOut.String())
	}
	out := h.out.String()
	if strings.Contains(out, "Write report") || !strings.Contains(out, "Review report") {
		t.Errorf("unexpected output:\n%s", out)
	}

	h.out.Reset()
	if code := h.run("task", "list", "-status", "bogus"); code != 1 {
		t.Errorf("exit code = %d, want 1 for an unknown status", code)
	}
}

func TestRun_TaskDonePatchesStatus(t *testing.T) {
	b := &backend{responses: map[string]string{
		"GET /tasks/":     `[{"id":7,"title":"Write report","status":"todo"}]`,
		"PATCH /tasks/7/": `{"id":7,"title":"Write report","status":"done"}`,
	}}
	h := newHarness(t, b, true)

	if code := h.run("task", "done", "write"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, h.errOut.String())
	}
	req, ok := b.find(http.MethodPatch, "/tasks/7/")
	if !ok {
		t.Fatal("no PATCH sent")
	}
	if strings.TrimSpace(req.body) != `{"status":"done"}` {
		t.Errorf("patch body = %s", req.body)
	}
	if !strings.Contains(h.out.String(), "Done: Write report") {
		t.Errorf("output = %q", h.out.String())
	}
}

func TestRun_UnauthorizedSuggestsLogin(t *testing.T) {
	b := &backend{
		responses: map[string]string{"GET /tasks/": `{"detail":"expired"}`},
		statuses:  map[string]int{"GET /tasks/": http.StatusUnauthorized},
	}
	h := newHarness(t, b, true)

	if code := h.run("task", "list"); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(h.errOut.String(), `Run "hub login"`) {
		t.Errorf("stderr = %q", h.errOut.String())
	}
	if h.sess.Authenticated() {
		t.Error("session should be cleared after a 401")
	}
}

func TestRun_LoginPromptsForCredentials(t *testing.T) {
	b := &backend{responses: map[string]string{
		"POST /token/":   `{"access":"a1","refresh":"r1"}`,
		"GET /users/me/": `{"id":1,"username":"ada","first_name":"Ada","last_name":"Lovelace"}`,
	}}
	h := newHarness(t, b, false)
	h.app.In = strings.NewReader("ada\nsecret\n")

	if code := h.run("login"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, h.errOut.String())
	}
	if !h.sess.Authenticated() {
		t.Error("session should hold the new tokens")
	}
	req, _ := b.find(http.MethodPost, "/token/")
	if !strings.Contains(req.body, `"username":"ada"`) || !strings.Contains(req.body, `"password":"secret"`) {
		t.Errorf("token request body = %s", req.body)
	}
	if !strings.Contains(h.out.String(), "Logged in as Ada Lovelace") {
		t.Errorf("output = %q", h.out.String())
	}
}

func TestRun_LoginInvalidCredentials(t *testing.T) {
	b := &backend{
		responses: map[string]string{"POST /token/": `{"detail":"No active account"}`},
		statuses:  map[string]int{"POST /token/": http.StatusUnauthorized},
	}
	h := newHarness(t, b, false)

	if code := h.run("login", "-u", "ada", "-p", "wrong"); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(h.errOut.String(), "Invalid username or password.") {
		t.Errorf("stderr = %q", h.errOut.String())
	}
}

func TestRun_MailSyncReportsDetail(t *testing.T) {
	b := &backend{
		responses: map[string]string{
			"POST /email-accounts/3/sync/": `{"status":"error","detail":"IMAP login failed"}`,
		},
		statuses: map[string]int{"POST /email-accounts/3/sync/": http.StatusBadRequest},
	}
	h := newHarness(t, b, true)

	if code := h.run("mail", "sync", "3"); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(h.errOut.String(), "sync failed: IMAP login failed") {
		t.Errorf("stderr = %q", h.errOut.String())
	}
}

func TestRun_MailListSendsQuery(t *testing.T) {
	b := &backend{responses: map[string]string{
		"GET /email-messages/": `{"count":1,"results":[
			{"id":9,"account":2,"subject":"Invoice","from_email":"billing@example.com","sent_at":"2024-03-15T08:00:00Z","is_read":false}
		]}`,
	}}
	h := newHarness(t, b, true)

	if code := h.run("mail", "list", "-account", "2", "-unread"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, h.errOut.String())
	}
	req, _ := b.find(http.MethodGet, "/email-messages/")
	if req.query != "account=2&is_read=false" {
		t.Errorf("query = %q", req.query)
	}
	if !strings.Contains(h.out.String(), "[9] * billing@example.com") {
		t.Errorf("output = %q", h.out.String())
	}
}

func TestRun_NoteExportThenImport(t *testing.T) {
	b := &backend{responses: map[string]string{
		"GET /notes/":  `[{"id":5,"note_type":"daily","date":"2024-03-15","title":"Standup","content":"# Standup\n\nShipped it.\n","job":"acme"}]`,
		"POST /notes/": `{"id":6,"note_type":"daily","date":"2024-03-15","title":"Standup","content":"# Standup\n\nShipped it.\n"}`,
	}}
	h := newHarness(t, b, true)
	dir := t.TempDir()

	if code := h.run("note", "export", "-o", dir, "Standup"); code != 0 {
		t.Fatalf("export exit code = %d, stderr = %s", code, h.errOut.String())
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil || len(files) != 1 {
		t.Fatalf("exported files = %v, err = %v", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "---\n") || !strings.Contains(string(data), "job: acme") {
		t.Errorf("exported file:\n%s", data)
	}

	if code := h.run("note", "import", files[0]); code != 0 {
		t.Fatalf("import exit code = %d, stderr = %s", code, h.errOut.String())
	}
	req, ok := b.find(http.MethodPost, "/notes/")
	if !ok {
		t.Fatal("import sent no POST")
	}
	for _, want := range []string{`"title":"Standup"`, `"note_type":"daily"`, `"date":"2024-03-15"`, `"job":"acme"`} {
		if !strings.Contains(req.body, want) {
			t.Errorf("create body missing %s: %s", want, req.body)
		}
	}
}

func TestRun_NoteImportDirectory(t *testing.T) {
	b := &backend{responses: map[string]string{
		"POST /notes/": `{"id":7,"note_type":"general","title":"Imported","content":""}`,
	}}
	h := newHarness(t, b, true)

	root := t.TempDir()
	files := map[string]string{
		"jobs/acme/2024-03-04-kickoff.md": "# Kickoff\n\nAgenda.\n",
		"ideas/garden.md":                 "---\ntitle: Garden\njob: home\n---\nTomatoes.\n",
		"jobs/acme/.drafts/skip.md":       "# Hidden\n",
		"todo.txt":                        "not a note",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if code := h.run("note", "import", root); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, h.errOut.String())
	}

	var bodies []string
	b.mu.Lock()
	for _, r := range b.requests {
		if r.method == http.MethodPost && r.path == "/notes/" {
			bodies = append(bodies, r.body)
		}
	}
	b.mu.Unlock()

	if len(bodies) != 2 {
		t.Fatalf("expected 2 creates, got %d: %v", len(bodies), bodies)
	}
	// Scan order is by relative path: ideas/ before jobs/.
	for _, want := range []string{`"title":"Garden"`, `"job":"home"`} {
		if !strings.Contains(bodies[0], want) {
			t.Errorf("first create missing %s: %s", want, bodies[0])
		}
	}
	for _, want := range []string{`"title":"Kickoff"`, `"job":"acme"`, `"date":"2024-03-04"`} {
		if !strings.Contains(bodies[1], want) {
			t.Errorf("second create missing %s: %s", want, bodies[1])
		}
	}
}

func TestRun_EventAddRejectsBadRange(t *testing.T) {
	b := &backend{}
	h := newHarness(t, b, true)

	code := h.run("event", "add", "-start", "2024-03-15T10:00", "-end", "2024-03-15T09:00", "Planning")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if _, sent := b.find(http.MethodPost, "/events/"); sent {
		t.Error("an invalid event should not reach the backend")
	}
	if !strings.Contains(h.errOut.String(), "ends before it starts") {
		t.Errorf("stderr = %q", h.errOut.String())
	}
}

func TestRun_WhoamiShowsProfile(t *testing.T) {
	b := &backend{responses: map[string]string{
		"GET /users/me/": `{"id":1,"username":"sam","email":"sam@example.com","first_name":"Sam","last_name":"Lee"}`,
		"GET /profiles/": `[{"id":4,"user":1,"timezone":"Europe/Berlin","daily_start_hour":8,"daily_end_hour":18}]`,
	}}
	h := newHarness(t, b, true)

	if code := h.run("whoami"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, h.errOut.String())
	}
	for _, want := range []string{"Sam Lee (sam@example.com)", "Timezone: Europe/Berlin", "Day: 08:00-18:00"} {
		if !strings.Contains(h.out.String(), want) {
			t.Errorf("expected %q in output %q", want, h.out.String())
		}
	}
}

func TestRun_WhoamiWithoutProfile(t *testing.T) {
	b := &backend{responses: map[string]string{
		"GET /users/me/": `{"id":1,"username":"sam"}`,
		"GET /profiles/": `[]`,
	}}
	h := newHarness(t, b, true)

	if code := h.run("whoami"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, h.errOut.String())
	}
	if strings.Contains(h.out.String(), "Timezone") {
		t.Errorf("unexpected profile lines in %q", h.out.String())
	}
}

const attachedNote = `[{"id":3,"title":"Design","note_type":"general","content":"body",
	"attachments":[{"id":12,"note":3,"file":"http://files.local/media/notes/diagram.png"}]}]`

func TestRun_NoteShowListsAttachments(t *testing.T) {
	b := &backend{responses: map[string]string{"GET /notes/": attachedNote}}
	h := newHarness(t, b, true)

	if code := h.run("note", "show", "-raw", "design"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, h.errOut.String())
	}
	if !strings.Contains(h.out.String(), "#12  diagram.png") {
		t.Errorf("expected the attachment in %q", h.out.String())
	}
}

func TestRun_NoteDetach(t *testing.T) {
	b := &backend{responses: map[string]string{
		"GET /notes/":                  attachedNote,
		"DELETE /note-attachments/12/": ``,
	}}
	h := newHarness(t, b, true)

	if code := h.run("note", "detach", "design", "99"); code != 1 {
		t.Fatalf("unknown attachment: exit code = %d, want 1", code)
	}
	if _, ok := b.find(http.MethodDelete, "/note-attachments/99/"); ok {
		t.Error("no request expected for an attachment the note does not have")
	}

	if code := h.run("note", "detach", "design", "#12"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, h.errOut.String())
	}
	if _, ok := b.find(http.MethodDelete, "/note-attachments/12/"); !ok {
		t.Error("expected DELETE /note-attachments/12/")
	}
}

func TestRun_MailWatchStopsWhenSessionEnds(t *testing.T) {
	b := &backend{
		responses: map[string]string{"GET /email-messages/": `[{"id":1,"subject":"hi"}]`},
		sequence:  map[string][]int{"GET /email-messages/": {http.StatusOK, http.StatusUnauthorized}},
	}
	h := newHarness(t, b, true)

	done := make(chan int, 1)
	go func() { done <- h.run("mail", "watch", "-every", "5ms") }()

	select {
	case code := <-done:
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch kept polling after the session ended")
	}
	if !strings.Contains(h.out.String(), "1 unread") {
		t.Errorf("expected the first count, got %q", h.out.String())
	}
	if !strings.Contains(h.errOut.String(), `Run "hub login"`) {
		t.Errorf("stderr = %q", h.errOut.String())
	}
	if h.sess.Authenticated() {
		t.Error("session should be cleared after a 401")
	}
}
