package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/finplan/internal/rest"
	"github.com/klokku/finplan/pkg/projection"
	log "github.com/sirupsen/logrus"
)

type MetaDTO struct {
	Company     string  `json:"company"`
	OpeningCash float64 `json:"openingCash"`
	Equity      float64 `json:"equity"`
}

type StepDTO struct {
	Step int `json:"step"`
}

type SessionDTO struct {
	Id          string                    `json:"id"`
	Step        int                       `json:"step"`
	StepTitle   string                    `json:"stepTitle"`
	Meta        MetaDTO                   `json:"meta"`
	Assumptions projection.AssumptionsDTO `json:"assumptions"`
	Projection  projection.ProjectionDTO  `json:"projection"`
	CreatedAt   time.Time                 `json:"createdAt"`
	LastAccess  time.Time                 `json:"lastAccess"`
}

type Handler struct {
	service  Service
	renderer projection.Renderer
	currency *projection.CurrencyFormatter
}

func NewHandler(service Service, renderer projection.Renderer, currency *projection.CurrencyFormatter) *Handler {
	return &Handler{service, renderer, currency}
}

// CreateSession godoc
// @Summary Start a wizard session
// @Description Create a session seeded with the sample plan
// @Tags Wizard
// @Produce json
// @Success 201 {object} SessionDTO
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/wizard [post]
func (handler *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating wizard session")
	session, err := handler.service.Create(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, handler.sessionToDTO(session))
}

// GetSession godoc
// @Summary Get a wizard session
// @Description Current step, assumptions and projection of the session
// @Tags Wizard
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} SessionDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/wizard/{sessionId} [get]
func (handler *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting wizard session")
	session, err := handler.service.Get(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, handler.sessionToDTO(session))
}

// ReplaceSection godoc
// @Summary Replace one section of the assumptions
// @Description The body replaces the section as a whole. Lists are never merged.
// @Tags Wizard
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param section path string true "meta, revenue, varcosts, payroll, opex, capex, debts, taxes or workingcapital"
// @Success 200 {object} SessionDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/wizard/{sessionId}/{section} [put]
func (handler *Handler) ReplaceSection(w http.ResponseWriter, r *http.Request) {
	log.Debug("Replacing wizard section")
	vars := mux.Vars(r)
	section, err := ParseSection(vars["section"])
	if err != nil {
		writeServiceError(w, fmt.Errorf("%q: %w", vars["section"], err))
		return
	}
	replacement, err := decodeReplacement(section, r.Body)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid section payload", err.Error())
		return
	}

	session, err := handler.service.ReplaceSection(r.Context(), vars["sessionId"], replacement)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, handler.sessionToDTO(session))
}

// SetStep godoc
// @Summary Jump to a wizard step
// @Description Steps outside 1..6 are clamped
// @Tags Wizard
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param step body StepDTO true "Step"
// @Success 200 {object} SessionDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/wizard/{sessionId}/step [put]
func (handler *Handler) SetStep(w http.ResponseWriter, r *http.Request) {
	log.Debug("Setting wizard step")
	var dto StepDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid step", err.Error())
		return
	}
	session, err := handler.service.SetStep(r.Context(), mux.Vars(r)["sessionId"], dto.Step)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, handler.sessionToDTO(session))
}

// NextStep godoc
// @Summary Move to the next wizard step
// @Tags Wizard
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} SessionDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/wizard/{sessionId}/next [post]
func (handler *Handler) NextStep(w http.ResponseWriter, r *http.Request) {
	log.Debug("Moving to next wizard step")
	session, err := handler.service.Next(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, handler.sessionToDTO(session))
}

// PreviousStep godoc
// @Summary Move to the previous wizard step
// @Tags Wizard
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} SessionDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/wizard/{sessionId}/back [post]
func (handler *Handler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	log.Debug("Moving to previous wizard step")
	session, err := handler.service.Back(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, handler.sessionToDTO(session))
}

// Export godoc
// @Summary Export the session's projection
// @Description One CSV table (pl, cashflow, balance) or the zip bundle
// @Tags Wizard
// @Produce text/csv
// @Produce application/zip
// @Param sessionId path string true "Session ID"
// @Param table path string true "pl, cashflow, balance or bundle"
// @Success 200 {file} file
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/wizard/{sessionId}/export/{table} [get]
func (handler *Handler) Export(w http.ResponseWriter, r *http.Request) {
	log.Debug("Exporting wizard projection")
	vars := mux.Vars(r)
	session, err := handler.service.Get(r.Context(), vars["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	projection.ServeExport(w, handler.renderer, session.Projection, vars["table"])
}

// DeleteSession godoc
// @Summary End a wizard session
// @Tags Wizard
// @Param sessionId path string true "Session ID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/wizard/{sessionId} [delete]
func (handler *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	log.Debug("Deleting wizard session")
	deleted, err := handler.service.Delete(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		writeServiceError(w, ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		rest.WriteError(w, http.StatusNotFound, "Session not found", err.Error())
	case errors.Is(err, ErrUnknownSection):
		rest.WriteError(w, http.StatusBadRequest, "Unknown section", err.Error())
	default:
		log.Errorf("wizard request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
	}
}

func decodeReplacement(section Section, body io.Reader) (Replacement, error) {
	decoder := json.NewDecoder(body)
	replacement := Replacement{Section: section}
	var dto projection.AssumptionsDTO
	var err error
	switch section {
	case MetaSection:
		var meta MetaDTO
		err = decoder.Decode(&meta)
		replacement.Meta = Meta(meta)
	case RevenueSection:
		err = decoder.Decode(&dto.RevenueDrivers)
	case VariableCostsSection:
		err = decoder.Decode(&dto.VariableCosts)
	case PayrollSection:
		err = decoder.Decode(&dto.Payroll)
	case OpexSection:
		err = decoder.Decode(&dto.Opex)
	case CapexSection:
		err = decoder.Decode(&dto.Capex)
	case DebtsSection:
		err = decoder.Decode(&dto.Debts)
	case TaxesSection:
		err = decoder.Decode(&dto.Taxes)
	case WorkingCapitalSection:
		err = decoder.Decode(&dto.WorkingCapital)
	default:
		return Replacement{}, ErrUnknownSection
	}
	if err != nil {
		return Replacement{}, err
	}

	a := projection.DTOToAssumptions(dto)
	replacement.RevenueDrivers = a.RevenueDrivers
	replacement.VariableCosts = a.VariableCosts
	replacement.Payroll = a.Payroll
	replacement.Opex = a.Opex
	replacement.Capex = a.Capex
	replacement.Debts = a.Debts
	replacement.Taxes = a.Taxes
	replacement.WorkingCapital = a.WorkingCapital
	return replacement, nil
}

func (handler *Handler) sessionToDTO(s Session) SessionDTO {
	return SessionDTO{
		Id:          s.Id,
		Step:        s.Step,
		StepTitle:   StepTitle(s.Step),
		Meta:        MetaDTO(s.Meta()),
		Assumptions: projection.AssumptionsToDTO(s.Assumptions),
		Projection:  projection.ProjectionToDTO(s.Projection, s.Issues, handler.currency),
		CreatedAt:   s.CreatedAt,
		LastAccess:  s.LastAccess,
	}
}
