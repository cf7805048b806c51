package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"embervite/internal/delivery/http/controllers"
	"embervite/internal/delivery/http/middleware"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Users     *controllers.UserController
	Events    *controllers.EventController
	Members   *controllers.MemberController
	Data      *controllers.DataController
	Dashboard *controllers.DashboardController
	RSVP      *controllers.RSVPController
}

// Wrapper decorates a single route, e.g. middleware.RequireAuth or middleware.RateLimit.
type Wrapper func(http.HandlerFunc) http.HandlerFunc

// NewRouter initializes the HTTP router with all application routes.
// auth guards organizer routes; rsvpLimit throttles the public confirmation links.
func NewRouter(c Controllers, auth, rsvpLimit Wrapper) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Users.SignUp)
	mux.HandleFunc("POST /auth/login", c.Users.Login)
	mux.HandleFunc("GET /users/me", auth(c.Users.GetMe))

	mux.HandleFunc("GET /dashboard", auth(c.Dashboard.Dashboard))

	// Events
	mux.HandleFunc("GET /events", auth(c.Events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Events.GetEvent))
	mux.HandleFunc("POST /events/{eventID}", auth(c.Events.SaveEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Events.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/toggle", auth(c.Events.ToggleEvent))
	mux.HandleFunc("POST /events/{eventID}/invites", auth(c.Events.SendInvites))
	mux.HandleFunc("GET /events/{eventID}/attendance", auth(c.Events.GetAttendance))
	mux.HandleFunc("PUT /events/{eventID}/members", auth(c.Events.SetEventMembers))
	mux.HandleFunc("GET /events/{eventID}/calendar.ics", auth(c.Events.EventCalendar))

	// Members
	mux.HandleFunc("GET /members", auth(c.Members.ListMembers))
	mux.HandleFunc("GET /members/backup", auth(c.Members.BackupMembers))
	mux.HandleFunc("GET /members/{memberID}", auth(c.Members.GetMember))
	mux.HandleFunc("POST /members/{memberID}", auth(c.Members.SaveMember))
	mux.HandleFunc("DELETE /members/{memberID}", auth(c.Members.DeleteMember))

	// Data feeds
	mux.HandleFunc("POST /data/event", auth(c.Data.Event))
	mux.HandleFunc("POST /data/event-members", auth(c.Data.EventMembers))

	// Public RSVP links
	mux.HandleFunc("GET /rsvp/{token}/yes", rsvpLimit(c.RSVP.Yes))
	mux.HandleFunc("GET /rsvp/{token}/no", rsvpLimit(c.RSVP.No))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// Handler wraps the router with the server-wide middleware. The request id is
// outermost so the access log, panic log and CORS responses all carry it.
func Handler(mux http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	h := middleware.CORS(allowedOrigins, mux)
	h = middleware.Recovery(logger, h)
	h = middleware.LoggingMiddleware(logger, h)
	return middleware.RequestID(h)
}
