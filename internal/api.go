package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"laptop-request-catalog/internal/app"
	"laptop-request-catalog/internal/datastore"
	"laptop-request-catalog/internal/form"
	"laptop-request-catalog/internal/models"

	"github.com/rs/zerolog/hlog"
)

// listLaptops returns the catalog straight from the data client
func (s *Server) listLaptops(w http.ResponseWriter, r *http.Request) {
	laptops, err := s.Client.ListLaptops(r.Context())
	s.Metrics.CatalogFetched(len(laptops), err)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error fetching laptops")
		writeError(w, http.StatusBadGateway, "FETCH_FAILED", app.MsgLoadFailed)
		return
	}
	sendListResponse(w, laptops, len(laptops), s.clock.Now())
}

// createRequest records a laptop request from a JSON body
func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var in models.NewLaptopRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON")
		return
	}

	fields := form.Input{
		Name:          in.RequesterName,
		Email:         in.RequesterEmail,
		Justification: in.BusinessJustification,
	}.Validate()
	if err := in.Validate(); err != nil {
		if fields == nil {
			fields = map[string]string{}
		}
		if in.Trimmed().LaptopModelID == "" {
			fields["laptop_model_id"] = "Laptop is required"
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "VALIDATION_FAILED", Fields: fields})
		return
	}

	req := in.Trimmed()
	err := s.Client.CreateRequest(context.WithoutCancel(r.Context()), req)
	s.Metrics.RequestSubmitted(err)

	var submitErr *datastore.SubmitError
	switch {
	case err == nil:
		hlog.FromRequest(r).Info().Str("laptop_model_id", req.LaptopModelID).Msg("Request submitted")
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"data": req,
			"meta": map[string]string{"timestamp": s.clock.Now().UTC().Format(time.RFC3339)},
		})
	case errors.As(err, &submitErr) && submitErr.UnknownLaptop():
		writeError(w, http.StatusUnprocessableEntity, "UNKNOWN_LAPTOP", "laptop_model_id does not exist")
	default:
		hlog.FromRequest(r).Error().Err(err).Str("laptop_model_id", req.LaptopModelID).Msg("Error submitting request")
		writeError(w, http.StatusBadGateway, "SUBMIT_FAILED", app.MsgSubmitFailed)
	}
}

type sessionLaptop struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

type sessionForm struct {
	Laptop     sessionLaptop     `json:"laptop"`
	Values     form.Input        `json:"values"`
	Errors     map[string]string `json:"errors,omitempty"`
	Submitting bool              `json:"submitting"`
}

type sessionNotification struct {
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	ExpiresInMS int64  `json:"expires_in_ms"`
}

type sessionResponse struct {
	ID           string               `json:"id"`
	Phase        string               `json:"phase"`
	Loading      bool                 `json:"loading"`
	LaptopCount  int                  `json:"laptop_count"`
	Form         *sessionForm         `json:"form,omitempty"`
	Notification *sessionNotification `json:"notification,omitempty"`
}

// sessionState reports the session controller's state without mounting it
func (s *Server) sessionState(w http.ResponseWriter, r *http.Request) {
	snap := ControllerFromContext(r.Context()).Snapshot()

	resp := sessionResponse{
		ID:          SessionIDFromContext(r.Context()).String(),
		Phase:       snap.Phase.String(),
		Loading:     snap.Loading(),
		LaptopCount: len(snap.Laptops),
	}
	if snap.Form != nil {
		l := snap.Form.Laptop()
		resp.Form = &sessionForm{
			Laptop:     sessionLaptop{ID: l.ID, Name: l.Name, Brand: l.Brand},
			Values:     snap.Form.Values(),
			Errors:     snap.Form.Errors(),
			Submitting: snap.Form.Submitting(),
		}
	}
	if n := snap.Notification; n != nil {
		resp.Notification = &sessionNotification{
			Kind:        string(n.Kind),
			Message:     n.Message,
			ExpiresInMS: snap.NotifyIn.Milliseconds(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
