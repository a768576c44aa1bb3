package patient

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/triage-gateway/internal/handler"
	"github.com/jwalitptl/triage-gateway/internal/middleware"
	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/upstream"
)

type Handler struct {
	patients upstream.PatientService
}

func NewHandler(patients upstream.PatientService) *Handler {
	return &Handler{patients: patients}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patients/:id", h.Get)
}

type locationResponse struct {
	Patient            *model.Patient `json:"patient"`
	CategoryLabel      string         `json:"category_label"`
	TimeSinceAdmission string         `json:"time_since_admission"`
}

// Get looks a patient up by identifier for the tracker panel. Unknown
// identifiers surface as "no such record".
func (h *Handler) Get(c *gin.Context) {
	sess := middleware.SessionFromContext(c)

	patient, err := h.patients.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(locationResponse{
		Patient:            patient,
		CategoryLabel:      model.CategoryLabel(patient.Category),
		TimeSinceAdmission: time.Since(patient.AdmittedAt).Round(time.Minute).String(),
	}))
}
