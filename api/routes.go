package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/citizenhub/internal/advisor"
	"github.com/garnizeh/citizenhub/internal/auth"
	"github.com/garnizeh/citizenhub/internal/catalog"
	"github.com/garnizeh/citizenhub/internal/complaints"
	"github.com/garnizeh/citizenhub/internal/eligibility"
	"github.com/garnizeh/citizenhub/internal/work"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Version   string
	BuildTime string
	Ping      func(ctx context.Context) error
	// CompletionHealth checks the model backend for /ready; may be nil.
	CompletionHealth func(ctx context.Context) error

	Auth       *auth.Service
	Complaints *complaints.Service
	Checker    *eligibility.Checker
	Catalog    *catalog.Store
	Advisor    *advisor.Advisor
	Work       *work.Service
}

func SetupRoutes(d Deps) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	tokens := d.Auth.Tokens()

	// Create handlers
	systemHandler := &SystemHandler{Ping: d.Ping, Completion: d.CompletionHealth}
	authHandler := NewAuthHandler(d.Auth)
	complaintsHandler := NewComplaintsHandler(d.Complaints)
	eligibilityHandler := NewEligibilityHandler(d.Checker, d.Catalog, d.Advisor)
	workHandler := NewWorkHandler(d.Work)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(d.Version, d.BuildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/ready", systemHandler.ReadyHandler).Methods("GET")
	r.HandleFunc("/auth_user", authHandler.AuthUser).Methods("POST")
	r.HandleFunc("/auth_admin", authHandler.AuthAdmin).Methods("POST")

	r.HandleFunc("/schemes", eligibilityHandler.Schemes).Methods("GET")
	r.HandleFunc("/schemes/{id}/details", eligibilityHandler.SchemeDetails).Methods("GET")
	r.HandleFunc("/languages", eligibilityHandler.Languages).Methods("GET")
	r.HandleFunc("/eligibility", eligibilityHandler.Check).Methods("POST")
	r.HandleFunc("/translate", eligibilityHandler.Translate).Methods("POST")

	r.HandleFunc("/work/opportunities", workHandler.Opportunities).Methods("GET")
	r.Handle("/work/opportunities/{id}/applications",
		OptionalAuthMiddleware(tokens)(http.HandlerFunc(workHandler.Apply))).Methods("POST")

	// Any signed-in caller
	signedIn := r.NewRoute().Subrouter()
	signedIn.Use(AuthMiddleware(tokens))
	signedIn.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST")

	// Citizen endpoints
	citizen := r.NewRoute().Subrouter()
	citizen.Use(AuthMiddleware(tokens), RequireRole(auth.RoleCitizen))
	citizen.HandleFunc("/complaint_user", complaintsHandler.Submit).Methods("POST")
	citizen.HandleFunc("/get_complaints_by_aadhar", complaintsHandler.ListMine).Methods("GET")

	// Admin endpoints
	admin := r.NewRoute().Subrouter()
	admin.Use(AuthMiddleware(tokens), RequireRole(auth.RoleAdmin))
	admin.HandleFunc("/get_complaints", complaintsHandler.List).Methods("GET")
	admin.HandleFunc("/get_complaints_by_admin", complaintsHandler.ListForAdmin).Methods("GET")
	admin.HandleFunc("/get_complaints_by_admin/export", complaintsHandler.Export).Methods("GET")
	admin.HandleFunc("/update_complaint_status", complaintsHandler.UpdateStatus).Methods("PUT")
	admin.HandleFunc("/complaints/{id:[0-9]+}/events", complaintsHandler.Events).Methods("GET")

	// CORS preflight for every path
	r.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
