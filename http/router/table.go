package router

import (
	"net/http"

	"github.com/xy-planning-network/budget/http/middleware"
)

// Paths the routing table and views refer to.
const (
	AddPath          = "/add"
	AnalyticsPath    = "/analytics"
	DashboardPath    = "/dashboard"
	EditProfilePath  = "/edit-profile"
	GoalsPath        = "/goals"
	LoginPath        = "/login"
	LogoutPath       = "/logout"
	MonthlyPath      = "/monthly"
	RootPath         = "/"
	SignupPath       = "/signup"
	TransactionsPath = "/transactions"
)

// Views are the handlers the app's routing table points at.
type Views struct {
	Login        http.Handler
	LoginSubmit  http.Handler
	Signup       http.Handler
	SignupSubmit http.Handler
	Logout       http.Handler

	Dashboard    http.Handler
	Add          http.Handler
	AddSubmit    http.Handler
	Transactions http.Handler
	Analytics    http.Handler
	Goals        http.Handler
	GoalsSubmit  http.Handler
	Monthly      http.Handler
	EditProfile  func() http.Handler

	// Throttle guards credential submissions.
	Throttle middleware.Adapter

	// Idempotent guards submissions that create records.
	Idempotent middleware.Adapter
}

// Table is the app's routing table.
//
// Login and signup stay reachable without authentication.
// Everything under the root requires it;
// the root itself redirects to the dashboard, which is then checked.
func Table(v Views) []Route {
	return []Route{
		{Path: LoginPath, Name: "login", Handler: v.Login},
		{Path: LoginPath, Method: http.MethodPost, Handler: v.LoginSubmit, Middlewares: []middleware.Adapter{v.Throttle}},
		{Path: SignupPath, Name: "signup", Handler: v.Signup},
		{Path: SignupPath, Method: http.MethodPost, Handler: v.SignupSubmit, Middlewares: []middleware.Adapter{v.Throttle}},
		{Path: LogoutPath, Method: http.MethodPost, Handler: v.Logout},
		{
			Path:         RootPath,
			RequiresAuth: true,
			Children: []Route{
				{Path: "", Redirect: "dashboard"},
				{Path: "dashboard", Name: "dashboard", Handler: v.Dashboard},
				{Path: "add", Name: "add", Handler: v.Add},
				{Path: "add", Method: http.MethodPost, Handler: v.AddSubmit, Middlewares: []middleware.Adapter{v.Idempotent}},
				{Path: "transactions", Name: "transactions", Handler: v.Transactions},
				{Path: "analytics", Name: "analytics", Handler: v.Analytics},
				{Path: "goals", Name: "goals", Handler: v.Goals},
				{Path: "goals", Method: http.MethodPost, Handler: v.GoalsSubmit},
				{Path: "monthly", Name: "monthly", Handler: v.Monthly},
				{Path: "edit-profile", Name: "edit-profile", Load: v.EditProfile},
			},
		},
	}
}
