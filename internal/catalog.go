package internal

import (
	"bytes"
	"errors"
	"net/http"

	"laptop-request-catalog/internal/app"
	"laptop-request-catalog/internal/form"
	"laptop-request-catalog/internal/view"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

// showCatalog mounts the session controller and renders the catalog page.
// Every full page load fetches the catalog again.
func (s *Server) showCatalog(w http.ResponseWriter, r *http.Request) {
	ctrl := ControllerFromContext(r.Context())
	ctrl.Mount(r.Context())
	s.renderPage(w, r, http.StatusOK, ctrl.Snapshot())
}

// selectLaptop opens the request form for a laptop
func (s *Server) selectLaptop(w http.ResponseWriter, r *http.Request) {
	ctrl := ControllerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	_, err := ctrl.Select(id)
	switch {
	case err == nil:
		s.renderPage(w, r, http.StatusOK, ctrl.Snapshot())
	case errors.Is(err, app.ErrNotLoaded):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, app.ErrUnknownLaptop):
		http.Error(w, "laptop not found", http.StatusNotFound)
	case errors.Is(err, app.ErrUnavailable), errors.Is(err, app.ErrSubmitInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// closeRequest dismisses the request form
func (s *Server) closeRequest(w http.ResponseWriter, r *http.Request) {
	ctrl := ControllerFromContext(r.Context())
	if err := ctrl.Close(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// submitRequest submits the open request form. Blank fields re-render the
// form with errors; any other outcome returns to the catalog, where the
// notification reports the result.
func (s *Server) submitRequest(w http.ResponseWriter, r *http.Request) {
	ctrl := ControllerFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := form.Input{
		Name:          r.PostFormValue(form.FieldName),
		Email:         r.PostFormValue(form.FieldEmail),
		Justification: r.PostFormValue(form.FieldJustification),
	}

	err := ctrl.Submit(r.Context(), in)
	switch {
	case errors.Is(err, form.ErrInvalid):
		s.renderPage(w, r, http.StatusUnprocessableEntity, ctrl.Snapshot())
	case errors.Is(err, app.ErrSubmitInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		// Success, data service failures and a missing selection all
		// land on the catalog; failures are already logged.
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// renderPage renders snap into a buffer first so template failures still
// produce a clean 500
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, snap app.Snapshot) {
	data := view.PageData{
		Loading: snap.Loading(),
		Catalog: view.BuildWith(s.prices, snap.Laptops),
	}
	if snap.Notification != nil {
		data.Notification = view.NewNotification(*snap.Notification, snap.NotifyIn)
	}
	if snap.Form != nil {
		data.Dialog = view.NewDialog(s.prices, snap.Form)
	}

	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("Client went away during render")
	}
}
