package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

type Routes struct {
	User           *UserAppointmentHandler
	Admin          *AdminHandler
	Auth           *AdminAuthHandler
	AdminAuth      func(http.Handler) http.Handler
	BookingLimiter *RateLimiter
	Metrics        http.Handler
	Health         http.HandlerFunc
}

func NewRouter(rt Routes) *mux.Router {
	r := mux.NewRouter()

	if rt.Health != nil {
		r.HandleFunc("/healthz", rt.Health).Methods(http.MethodGet)
	}
	if rt.Metrics != nil {
		r.Handle("/metrics", rt.Metrics).Methods(http.MethodGet)
	}

	// Public endpoints
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/services", rt.User.ListServices).Methods(http.MethodGet)
	api.HandleFunc("/availability/slots", rt.User.AvailableSlots).Methods(http.MethodGet)
	var create http.Handler = http.HandlerFunc(rt.User.CreateAppointment)
	if rt.BookingLimiter != nil {
		create = rt.BookingLimiter.Middleware(create)
	}
	api.Handle("/appointments", create).Methods(http.MethodPost)
	api.HandleFunc("/admin/login", rt.Auth.Login).Methods(http.MethodPost)

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(rt.AdminAuth)
	admin.HandleFunc("/appointments", rt.Admin.ListAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}", rt.Admin.GetAppointment).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}", rt.Admin.UpdateAppointment).Methods(http.MethodPut)
	admin.HandleFunc("/appointments/{id}", rt.Admin.DeleteAppointment).Methods(http.MethodDelete)
	admin.HandleFunc("/availability", rt.Admin.ListAvailability).Methods(http.MethodGet)
	admin.HandleFunc("/availability/{date}", rt.Admin.SetAvailability).Methods(http.MethodPut)
	admin.HandleFunc("/availability/{date}", rt.Admin.DeleteAvailability).Methods(http.MethodDelete)
	admin.HandleFunc("/users", rt.Auth.CreateUserAdmin).Methods(http.MethodPost)

	return r
}
