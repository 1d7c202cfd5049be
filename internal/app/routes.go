package app

import (
	"github.com/gorilla/mux"
	"github.com/klokku/finplan/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Stateless projection
	r.HandleFunc("/api/projection", deps.ProjectionHandler.Project).Methods("POST")
	r.HandleFunc("/api/projection/validate", deps.ProjectionHandler.Validate).Methods("POST")

	// Wizard sessions
	r.HandleFunc("/api/wizard", deps.WizardHandler.CreateSession).Methods("POST")
	r.HandleFunc("/api/wizard/{sessionId}", deps.WizardHandler.GetSession).Methods("GET")
	r.HandleFunc("/api/wizard/{sessionId}", deps.WizardHandler.DeleteSession).Methods("DELETE")
	r.HandleFunc("/api/wizard/{sessionId}/step", deps.WizardHandler.SetStep).Methods("PUT")
	r.HandleFunc("/api/wizard/{sessionId}/next", deps.WizardHandler.NextStep).Methods("POST")
	r.HandleFunc("/api/wizard/{sessionId}/back", deps.WizardHandler.PreviousStep).Methods("POST")
	r.HandleFunc("/api/wizard/{sessionId}/export/{table}", deps.WizardHandler.Export).Methods("GET")
	// Must stay after /step so the literal segment wins.
	r.HandleFunc("/api/wizard/{sessionId}/{section}", deps.WizardHandler.ReplaceSection).Methods("PUT")
}
