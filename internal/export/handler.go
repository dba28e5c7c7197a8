package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/cellengine/backend-go/internal/auth"
	"github.com/inamate/cellengine/backend-go/internal/document"
	"github.com/inamate/cellengine/backend-go/internal/project"
)

// DocumentSource returns the latest document of a project the user owns.
type DocumentSource interface {
	Document(ctx context.Context, projectID, userID string) (*document.InDocument, error)
}

type Handler struct {
	docs DocumentSource
}

func NewHandler(docs DocumentSource) *Handler {
	return &Handler{docs: docs}
}

// ExportPDF serves GET /api/projects/{projectId}/export.pdf?cut=&frame=.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["projectId"]

	frame := 0
	if s := r.URL.Query().Get("frame"); s != "" {
		f, err := strconv.Atoi(s)
		if err != nil || f < 0 {
			http.Error(w, "invalid frame", http.StatusBadRequest)
			return
		}
		frame = f
	}

	doc, err := h.docs.Document(r.Context(), projectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, project.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			slog.Error("load document failed", "error", err, "project", projectID)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	var buf bytes.Buffer
	if err := RenderPDF(&buf, doc, r.URL.Query().Get("cut"), frame); err != nil {
		if errors.Is(err, document.ErrCutNotFound) {
			http.Error(w, "cut not found", http.StatusNotFound)
			return
		}
		slog.Error("export pdf failed", "error", err, "project", projectID)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	name := sanitizeName(doc.Project.Name)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%d.pdf"`, name, frame))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func sanitizeName(name string) string {
	if name == "" {
		return "cut"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
