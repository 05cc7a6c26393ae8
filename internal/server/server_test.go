package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/history"
	"github.com/matzehuels/blueprint/pkg/observability"
	"github.com/matzehuels/blueprint/pkg/ops"
	"github.com/matzehuels/blueprint/pkg/value"
)

type fixture struct {
	srv     *httptest.Server
	graph   *graph.Graph
	trigger *engine.Trigger
	src     *graph.Node
	add     *graph.Node
	link    graph.LinkID
	history *history.Memory
}

// newFixture serves Source -> Add.a with Add.b = 3.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := ops.NewRegistry()
	g := graph.New()
	src, _ := reg.New(graph.TypeTag{Category: ops.CategoryConstant, Name: "int"})
	add, _ := reg.New(graph.TypeTag{Category: ops.CategoryMath, Name: "add"})
	for _, n := range []*graph.Node{src, add} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := graph.Set(add.Input("b"), value.Int(3)); err != nil {
		t.Fatal(err)
	}
	link, err := g.AddLink(src.Output("out").ID, add.Input("a").ID)
	if err != nil {
		t.Fatal(err)
	}

	h := history.NewMemory(0)
	trig := engine.NewTrigger(g, nil, engine.OnComplete(func(rep *engine.Report) {
		_ = h.Record(context.Background(), rep)
	}))
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "# metrics\n")
	})
	s := New(g, reg, trig, WithHistory(h), WithMetrics(metrics))
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	return &fixture{srv: srv, graph: g, trigger: trig, src: src, add: add, link: link, history: h}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func errorCode(t *testing.T, data []byte) errors.Code {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode error body %q: %v", data, err)
	}
	return body.Code
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	if resp, _ := f.do(t, "GET", "/healthz", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("GET /healthz = %d", resp.StatusCode)
	}
	if resp, body := f.do(t, "GET", "/metrics", ""); resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "# metrics") {
		t.Errorf("GET /metrics = %d %q", resp.StatusCode, body)
	}
}

func TestNodes(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, "GET", "/nodes", "")
	var nodes []nodeView
	if err := json.Unmarshal(body, &nodes); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /nodes = %d, %v", resp.StatusCode, err)
	}
	if len(nodes) != 2 || nodes[1].Type.String() != "math/add" || len(nodes[0].Pins) != 0 {
		t.Errorf("nodes = %+v", nodes)
	}

	resp, body = f.do(t, "GET", fmt.Sprintf("/nodes/%d", f.add.ID), "")
	var nv nodeView
	if err := json.Unmarshal(body, &nv); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /nodes/{id} = %d, %v", resp.StatusCode, err)
	}
	if len(nv.Pins) != 3 || !nv.Pins[0].Linked || string(nv.Pins[1].Value) != "3" {
		t.Errorf("pins = %+v", nv.Pins)
	}
}

func TestErrors(t *testing.T) {
	f := newFixture(t)
	srcIn := f.src.Input("value").ID

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   errors.Code
	}{
		{"MissingNode", "GET", "/nodes/999", "", 404, errors.ErrCodeNotFound},
		{"BadNodeID", "GET", "/nodes/abc", "", 400, errors.ErrCodeInvalidInput},
		{"MissingPin", "PUT", "/pins/999", "1", 404, errors.ErrCodeNotFound},
		{"WrongValueKind", "PUT", fmt.Sprintf("/pins/%d", srcIn), `"five"`, 400, errors.ErrCodeTypeMismatch},
		{"BadBody", "POST", "/links", "{", 400, errors.ErrCodeInvalidInput},
		{"OutputToOutput", "POST", "/links", fmt.Sprintf(`{"from": %d, "to": %d}`, f.src.Output("out").ID, f.add.Output("sum").ID), 400, errors.ErrCodeInvalidLink},
		{"UnknownType", "POST", "/nodes", `{"type": "math/pow"}`, 404, errors.ErrCodeNotFound},
		{"MissingLink", "DELETE", "/links/999", "", 404, errors.ErrCodeNotFound},
		{"NoReportYet", "GET", "/report", "", 404, errors.ErrCodeNotFound},
		{"MissingPass", "GET", "/history/nope", "", 404, errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.wantStatus, body)
			}
			if got := errorCode(t, body); got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestSetPinAndRun(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, "PUT", fmt.Sprintf("/pins/%d", f.src.Input("value").ID), "5")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("PUT pin = %d", resp.StatusCode)
	}
	if !f.trigger.NeedsRunning() {
		t.Error("pin write did not request a pass")
	}

	resp, body := f.do(t, "POST", "/run?wait=true", "")
	var rep engine.Report
	if err := json.Unmarshal(body, &rep); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /run = %d, %v", resp.StatusCode, err)
	}
	if !rep.OK() {
		t.Errorf("report = %s", &rep)
	}
	if sum, _ := graph.Get[value.Int](f.add.Output("sum")); sum != 8 {
		t.Errorf("sum = %v, want 8", sum)
	}

	resp, body = f.do(t, "GET", "/report", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), rep.PassID) {
		t.Errorf("GET /report = %d %s", resp.StatusCode, body)
	}
	resp, body = f.do(t, "GET", "/history?limit=5", "")
	var reps []engine.Report
	if err := json.Unmarshal(body, &reps); err != nil || len(reps) != 1 || reps[0].PassID != rep.PassID {
		t.Errorf("GET /history = %d %s", resp.StatusCode, body)
	}
	if resp, _ := f.do(t, "GET", "/history/"+rep.PassID, ""); resp.StatusCode != http.StatusOK {
		t.Errorf("GET /history/{pass} = %d", resp.StatusCode)
	}
}

func TestRunWithoutWait(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, "POST", "/run", "")
	var st engine.Stats
	if err := json.Unmarshal(body, &st); err != nil || resp.StatusCode != http.StatusAccepted {
		t.Fatalf("POST /run = %d, %v", resp.StatusCode, err)
	}
	if !st.Needs {
		t.Error("run request not recorded")
	}
}

func TestStructuralEdits(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, "POST", "/nodes", `{"type": "math/add", "name": "second"}`)
	var nv nodeView
	if err := json.Unmarshal(body, &nv); err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /nodes = %d, %v", resp.StatusCode, err)
	}
	if nv.Name != "second" || !nv.Built || f.graph.NodeCount() != 3 {
		t.Errorf("added node = %+v", nv)
	}

	if resp, _ := f.do(t, "DELETE", fmt.Sprintf("/links/%d", f.link), ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE link = %d", resp.StatusCode)
	}
	resp, body = f.do(t, "POST", "/links", fmt.Sprintf(`{"from": %d, "to": %d}`, f.src.Output("out").ID, nv.Pins[0].ID))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /links = %d %s", resp.StatusCode, body)
	}

	resp, body = f.do(t, "DELETE", fmt.Sprintf("/nodes/%d", f.src.ID), "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "removed_links") {
		t.Errorf("DELETE node = %d %s", resp.StatusCode, body)
	}
	if f.graph.LinkCount() != 0 {
		t.Errorf("links left = %d, want 0", f.graph.LinkCount())
	}
}

func TestGraphAndCycles(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, "GET", "/graph", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"constant/int"`) {
		t.Errorf("GET /graph = %d %s", resp.StatusCode, body)
	}
	resp, body = f.do(t, "GET", "/cycles", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"cycles": []`) {
		t.Errorf("GET /cycles = %d %s", resp.StatusCode, body)
	}
	resp, body = f.do(t, "GET", "/types", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"category": "debug"`) {
		t.Errorf("GET /types = %d %s", resp.StatusCode, body)
	}
}

type httpRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (r *httpRecorder) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, fmt.Sprintf("%s %s %d", method, route, status))
}

func TestObserveReportsRoutePattern(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	f := newFixture(t)
	f.do(t, "GET", fmt.Sprintf("/nodes/%d", f.add.ID), "")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.routes) != 1 || rec.routes[0] != "GET /nodes/{id} 200" {
		t.Errorf("recorded %v, want [GET /nodes/{id} 200]", rec.routes)
	}
}
