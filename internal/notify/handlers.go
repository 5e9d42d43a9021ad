package notify

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/qualclamps/storefront/internal/common"
	"github.com/qualclamps/storefront/internal/events"
)

// Handlers serves the contact form endpoint.
type Handlers struct {
	Bus      *events.Bus
	Validate *validator.Validate
}

// Contact handles POST /contact. The submission is fanned out as an event;
// delivery failures are logged, never surfaced to the visitor.
func (h Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	var msg ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		common.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid json body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(msg); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				details := make([]string, 0, len(verrs))
				for _, ve := range verrs {
					details = append(details, ve.Field())
				}
				common.JSONError(w, http.StatusBadRequest, "invalid_input", "missing or invalid fields", details)
				return
			}
			common.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return
		}
	}
	_ = h.Bus.Emit(r.Context(), events.TopicContactReceived, msg)
	common.JSON(w, http.StatusAccepted, map[string]any{"received": true})
}
