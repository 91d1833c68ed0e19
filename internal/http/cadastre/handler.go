package cadastre

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/titledeed/internal/cadastre"
	propertyHandler "github.com/MrJamesThe3rd/titledeed/internal/http/property"
	"github.com/MrJamesThe3rd/titledeed/internal/http/respond"
)

const maxExtractSize = 10 << 20

type Handler struct {
	svc *cadastre.Service
}

func NewHandler(svc *cadastre.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/imports", h.importExtract)
}

type importResponse struct {
	*cadastre.Report
	Imported   int `json:"imported"`
	Properties any `json:"properties"`
}

func (h *Handler) importExtract(w http.ResponseWriter, r *http.Request) {
	a, ok := respond.Actor(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxExtractSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	report, err := h.svc.Import(r.Context(), a, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	status := http.StatusCreated
	if len(report.Submitted) == 0 && len(report.Failures) > 0 {
		status = http.StatusConflict
	}

	respond.JSON(w, status, importResponse{Report: report, Imported: len(report.Submitted), Properties: propertyHandler.ToResponseList(report.Submitted)})
}
