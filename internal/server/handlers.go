package server

import (
	"cmp"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/blueprint/pkg/buildinfo"
	"github.com/matzehuels/blueprint/pkg/engine"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/graph"
	"github.com/matzehuels/blueprint/pkg/graph/transform"
	bpio "github.com/matzehuels/blueprint/pkg/io"
	"github.com/matzehuels/blueprint/pkg/render/nodelink"
	"github.com/matzehuels/blueprint/pkg/value"
)

// maxBody bounds request bodies; image values are the largest payloads.
const maxBody = 64 << 20

type pinView struct {
	ID     graph.PinID     `json:"id"`
	Role   graph.Role      `json:"role"`
	Name   string          `json:"name"`
	Kind   value.Kind      `json:"kind"`
	Linked bool            `json:"linked"`
	Value  json.RawMessage `json:"value,omitempty"`
}

type nodeView struct {
	ID     graph.NodeID  `json:"id"`
	Type   graph.TypeTag `json:"type"`
	Name   string        `json:"name"`
	Built  bool          `json:"built"`
	Status graph.Status  `json:"status"`
	Pins   []pinView     `json:"pins,omitempty"`
}

func (s *Server) viewNode(n *graph.Node, withPins bool) nodeView {
	nv := nodeView{ID: n.ID, Type: n.Type, Name: n.Name, Built: n.Built(), Status: n.Status()}
	if !withPins {
		return nv
	}
	for _, p := range n.Pins() {
		pv := pinView{ID: p.ID, Role: p.Role, Name: p.Name, Kind: p.Kind, Linked: s.graph.IsPinLinked(p.ID)}
		if v := p.Value(); v != nil {
			if raw, err := value.Encode(v); err == nil {
				pv.Value = raw
			}
		}
		nv.Pins = append(nv.Pins, pv)
	}
	return nv
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := bpio.WriteJSON(s.graph.Snapshot(), w); err != nil {
		s.logger.Error("write graph", "err", err)
	}
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	snap := s.graph.Snapshot()
	dot := nodelink.ToDOT(snap, nodelink.Options{
		Report:   s.trigger.LastReport(),
		Cycles:   transform.FindCycles(snap),
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	svg, err := nodelink.RenderSVG(r.Context(), dot)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render graph"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	cycles := transform.FindCycles(s.graph.Snapshot())
	if cycles == nil {
		cycles = [][]graph.NodeID{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cycles": cycles})
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Tags())
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	nodes := s.graph.Nodes()
	out := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, s.viewNode(n, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	n, ok := s.graph.FindNode(graph.NodeID(id))
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "node %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, s.viewNode(n, true))
}

type addNodeRequest struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	tag, err := graph.ParseTypeTag(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := s.registry.New(tag)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Name != "" {
		n.Name = req.Name
	}
	if err := s.graph.AddNode(n); err != nil {
		writeError(w, err)
		return
	}
	s.trigger.RequestExecution()
	writeJSON(w, http.StatusCreated, s.viewNode(n, true))
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	removed, err := s.graph.RemoveNode(graph.NodeID(id))
	if err != nil {
		writeError(w, err)
		return
	}
	s.trigger.RequestExecution()
	if removed == nil {
		removed = []graph.LinkID{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed_links": removed})
}

// handleSetPin stores the JSON body as the pin's value and requests a pass.
// The body is decoded according to the pin's kind.
func (s *Server) handleSetPin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, ok := s.graph.FindPin(graph.PinID(id))
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "pin %d not found", id))
		return
	}
	var raw json.RawMessage
	if err := decodeBody(w, r, &raw); err != nil {
		writeError(w, err)
		return
	}
	v, err := value.Decode(p.Kind, raw)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeTypeMismatch, err, "pin %d expects %s", id, p.Kind))
		return
	}
	if err := p.Store(v, s.trigger.RequestExecution); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addLinkRequest struct {
	From graph.PinID `json:"from"`
	To   graph.PinID `json:"to"`
}

func (s *Server) handleAddLink(w http.ResponseWriter, r *http.Request) {
	var req addLinkRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.graph.AddLink(req.From, req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	s.trigger.RequestExecution()
	writeJSON(w, http.StatusCreated, graph.Link{ID: id, From: req.From, To: req.To})
}

func (s *Server) handleRemoveLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.graph.RemoveLink(graph.LinkID(id)); err != nil {
		writeError(w, err)
		return
	}
	s.trigger.RequestExecution()
	w.WriteHeader(http.StatusNoContent)
}

// handleRun requests a pass. With ?wait=true it drives the trigger itself
// until no request is outstanding and returns the last report.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.trigger.RequestExecution()
	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, s.trigger.Stats())
		return
	}

	var rep *engine.Report
	for {
		s.trigger.Tick(s.base)
		rep = s.trigger.Wait()
		if !s.trigger.NeedsRunning() || r.Context().Err() != nil {
			break
		}
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.trigger.Stats())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep := s.trigger.LastReport()
	if rep == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no pass has completed"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", q))
			return
		}
		limit = n
	}
	reps, err := s.history.List(r.Context(), r.URL.Query().Get("graph"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if reps == nil {
		reps = []*engine.Report{}
	}
	writeJSON(w, http.StatusOK, reps)
}

func (s *Server) handleHistoryPass(w http.ResponseWriter, r *http.Request) {
	rep, err := s.history.Get(r.Context(), chi.URLParam(r, "pass"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// =============================================================================
// Helpers
// =============================================================================

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, raw)
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Source  int64       `json:"source,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{
		Code:    cmp.Or(errors.GetCode(err), errors.ErrCodeInternal),
		Message: errors.UserMessage(err),
	}
	if e, ok := errors.As(err); ok {
		body.Source = e.Source
	}
	writeJSON(w, statusFor(body.Code), body)
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateID:
		return http.StatusConflict
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidName, errors.ErrCodeInvalidLink,
		errors.ErrCodeTypeMismatch:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
