package routes

import (
	"net/http"

	"orgadmin/internal/auth"
	"orgadmin/internal/handlers"
	"orgadmin/internal/middleware"
	"orgadmin/internal/store"

	"github.com/gorilla/mux"
)

type Deps struct {
	Handler *handlers.Handler
	Tokens  *auth.TokenService
	APIKeys store.APIKeyStore
	Authz   *auth.Authorizer
}

type entityRoutes struct {
	object       string
	list, get    http.HandlerFunc
	create       http.HandlerFunc
	update       http.HandlerFunc
	updateStatus http.HandlerFunc
	remove       http.HandlerFunc
}

func SetupRoutes(d Deps) *mux.Router {
	h := d.Handler
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/auth/refresh", h.RefreshToken).Methods("POST")

	// Protected routes (Authorization: Bearer <access_token> or X-API-Key)
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(middleware.Authenticate(d.Tokens, d.APIKeys))

	protected.HandleFunc("/auth/logout", h.Logout).Methods("POST")

	can := func(object, action string, fn http.HandlerFunc) http.Handler {
		return middleware.RequirePermission(d.Authz, object, action)(fn)
	}

	for path, e := range map[string]entityRoutes{
		"/companies":   {auth.ObjectCompanies, h.ListCompanies, h.GetCompany, h.CreateCompany, h.UpdateCompany, h.UpdateCompanyStatus, h.DeleteCompany},
		"/branches":    {auth.ObjectBranches, h.ListBranches, h.GetBranch, h.CreateBranch, h.UpdateBranch, h.UpdateBranchStatus, h.DeleteBranch},
		"/divisions":   {auth.ObjectDivisions, h.ListDivisions, h.GetDivision, h.CreateDivision, h.UpdateDivision, h.UpdateDivisionStatus, h.DeleteDivision},
		"/departments": {auth.ObjectDepartments, h.ListDepartments, h.GetDepartment, h.CreateDepartment, h.UpdateDepartment, h.UpdateDepartmentStatus, h.DeleteDepartment},
	} {
		protected.Handle(path, can(e.object, auth.ActionRead, e.list)).Methods("GET")
		protected.Handle(path, can(e.object, auth.ActionWrite, e.create)).Methods("POST")
		protected.Handle(path+"/{code}", can(e.object, auth.ActionRead, e.get)).Methods("GET")
		protected.Handle(path+"/{code}", can(e.object, auth.ActionWrite, e.update)).Methods("PUT")
		protected.Handle(path+"/{code}", can(e.object, auth.ActionWrite, e.remove)).Methods("DELETE")
		protected.Handle(path+"/{code}/status", can(e.object, auth.ActionWrite, e.updateStatus)).Methods("PATCH")
	}
	protected.Handle("/branches/{code}/headquarters", can(auth.ObjectBranches, auth.ActionWrite, h.SetHeadquarters)).Methods("PATCH")
	protected.Handle("/divisions/{code}/branch", can(auth.ObjectDivisions, auth.ActionWrite, h.MoveDivision)).Methods("PATCH")

	protected.Handle("/structure", can(auth.ObjectStructure, auth.ActionRead, h.GetStructure)).Methods("GET")
	protected.Handle("/structure/stats", can(auth.ObjectStructure, auth.ActionRead, h.GetStructureStats)).Methods("GET")

	protected.Handle("/apikeys", can(auth.ObjectAPIKeys, auth.ActionRead, h.ListAPIKeys)).Methods("GET")
	protected.Handle("/apikeys", can(auth.ObjectAPIKeys, auth.ActionWrite, h.CreateAPIKey)).Methods("POST")
	protected.Handle("/apikeys/{id}/status", can(auth.ObjectAPIKeys, auth.ActionWrite, h.UpdateAPIKeyStatus)).Methods("PATCH")
	protected.Handle("/apikeys/{id}", can(auth.ObjectAPIKeys, auth.ActionWrite, h.DeleteAPIKey)).Methods("DELETE")

	protected.Handle("/users", can(auth.ObjectUsers, auth.ActionRead, h.ListUsers)).Methods("GET")
	protected.Handle("/users", can(auth.ObjectUsers, auth.ActionWrite, h.CreateUser)).Methods("POST")
	protected.Handle("/users/{id}", can(auth.ObjectUsers, auth.ActionRead, h.GetUser)).Methods("GET")
	protected.Handle("/users/{id}/role", can(auth.ObjectUsers, auth.ActionWrite, h.UpdateUserRole)).Methods("PATCH")
	protected.Handle("/users/{id}/status", can(auth.ObjectUsers, auth.ActionWrite, h.UpdateUserStatus)).Methods("PATCH")

	return r
}
