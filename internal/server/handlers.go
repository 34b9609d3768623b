package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hargabyte/erd/internal/codec"
	"github.com/hargabyte/erd/internal/geometry"
	"github.com/hargabyte/erd/internal/model"
)

// maxDocumentSize bounds request bodies; diagrams are small documents.
const maxDocumentSize = 8 << 20

type parseResponse struct {
	Format  string         `json:"format"`
	Diagram *model.Diagram `json:"diagram"`
	XML     string         `json:"xml"`
}

// handleParse accepts raw XML in either dialect and answers with the detected
// format, the canonical JSON model, and the canonical standard-dialect XML.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readBody(w, r)
	if !ok {
		return
	}

	format, err := codec.Detect(text)
	if err != nil {
		s.writeCodecError(w, err)
		return
	}
	d, err := codec.ParseWithOptions(text, s.cfg.CodecOptions())
	if err != nil {
		s.writeCodecError(w, err)
		return
	}
	out, err := codec.Encode(d, codec.FormatStandard)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, parseResponse{Format: string(format), Diagram: d, XML: out})
}

type exportRequest struct {
	XML     string         `json:"xml,omitempty"`
	Diagram *model.Diagram `json:"diagram,omitempty"`
	Format  string         `json:"format"`
}

// handleExport converts a document to the requested dialect and answers with
// the raw XML text. The source is either a canonical JSON model (the editor's
// working state) or raw XML in any dialect.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDocumentSize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	if req.Format == "" {
		req.Format = string(codec.FormatStandard)
	}
	if req.Diagram == nil && req.XML == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "diagram or xml is required"})
		return
	}

	d := req.Diagram
	if d == nil {
		var err error
		d, err = codec.ParseWithOptions(req.XML, s.cfg.CodecOptions())
		if err != nil {
			s.writeCodecError(w, err)
			return
		}
	} else {
		d.Normalize()
	}
	out, err := codec.Encode(d, codec.Format(req.Format))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, out)
}

// handleDetect answers with just the dialect of the posted document.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readBody(w, r)
	if !ok {
		return
	}
	format, err := codec.Detect(text)
	if err != nil {
		s.writeCodecError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"format": string(format)})
}

type routeRequest struct {
	Points   []float64 `json:"points"`
	FromEdge string    `json:"fromEdge"`
	ToEdge   string    `json:"toEdge"`
}

// handleRoute converts a polyline into an orthogonal path.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDocumentSize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	if len(req.Points)%2 != 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "points must be x,y pairs"})
		return
	}

	out := geometry.OrthogonalFlat(req.Points,
		model.ParseEdge(req.FromEdge, model.EdgeRight),
		model.ParseEdge(req.ToEdge, model.EdgeLeft))
	writeJSON(w, http.StatusOK, map[string]any{"points": out})
}

type libraryEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	XML       string `json:"xml,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (s *Server) handleLibraryList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListDiagrams()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	out := make([]libraryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, libraryEntry{
			ID: e.ID, Name: e.Name,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
			UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleLibrarySave validates the document, normalizes it to the standard
// dialect, and upserts it. A missing id gets a generated one.
func (s *Server) handleLibrarySave(w http.ResponseWriter, r *http.Request) {
	var req libraryEntry
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDocumentSize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "name is required"})
		return
	}

	d, err := codec.ParseWithOptions(req.XML, s.cfg.CodecOptions())
	if err != nil {
		s.writeCodecError(w, err)
		return
	}
	canonical, err := codec.Encode(d, codec.FormatStandard)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	id := model.EnsureID(req.ID)
	if err := s.store.SaveDiagram(id, req.Name, canonical); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, libraryEntry{ID: id, Name: req.Name})
}

func (s *Server) handleLibraryGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := s.store.LoadDiagram(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "diagram not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, libraryEntry{
		ID: entry.ID, Name: entry.Name, XML: entry.Content,
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		UpdatedAt: entry.UpdatedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleLibraryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDiagram(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSnapshotTake(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := s.store.LoadDiagram(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "diagram not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	snapID, err := s.store.Snapshot(id, entry.Content, s.cfg.Library.SnapshotKeep)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshotId": snapID})
}

func (s *Server) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListSnapshots(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"snapshotId": e.ID,
			"takenAt":    e.TakenAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	snapID, err := strconv.ParseInt(chi.URLParam(r, "snapshotId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid snapshot id"})
		return
	}
	entry, err := s.store.LoadSnapshot(snapID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "snapshot not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	if entry.DiagramID != chi.URLParam(r, "id") {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "snapshot not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshotId": entry.ID,
		"xml":        entry.Content,
		"takenAt":    entry.TakenAt.Format(time.RFC3339),
	})
}

// readBody reads a raw XML request body.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "reading body"})
		return "", false
	}
	return string(data), true
}

// writeCodecError maps malformed documents to 400, anything else to 500.
func (s *Server) writeCodecError(w http.ResponseWriter, err error) {
	var malformed *codec.MalformedError
	if errors.As(err, &malformed) {
		s.log.Debug().Err(err).Msg("rejected malformed document")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
