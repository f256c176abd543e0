package appiumtest

import "time"

// Credentials accepted by the fake login app.
const (
	ValidUsername = "validuser"
	ValidPassword = "validpassword"
)

// Messages shown by the fake login app's error element.
const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgUsernameRequired   = "Username is required"
	MsgPasswordRequired   = "Password is required"
)

var homeElements = []string{"profile_button", "settings_button", "notifications_button", "search_button"}

// LoginAppOption configures NewLoginApp.
type LoginAppOption func(*loginApp)

type loginApp struct {
	outcomeDelay time.Duration
}

// WithOutcomeDelay makes the app react to a submit only after d, like an app
// waiting on a backend. The form stays on screen until then.
func WithOutcomeDelay(d time.Duration) LoginAppOption {
	return func(app *loginApp) {
		app.outcomeDelay = d
	}
}

// NewLoginApp starts a fake server modelling a two-screen app: a login form
// that validates credentials on submit and a home screen with navigation buttons.
func NewLoginApp(opts ...LoginAppOption) *Server {
	app := &loginApp{}
	for _, opt := range opts {
		opt(app)
	}

	s := NewServer()
	s.Add("username_input", "")
	s.Add("password_input", "")
	s.Add("login_button", "Login")

	s.OnClick("login_button", func(s *Server) {
		user, pass := s.ValueOf("username_input"), s.ValueOf("password_input")
		if app.outcomeDelay > 0 {
			s.After(app.outcomeDelay, func(s *Server) { submitLogin(s, user, pass) })
			return
		}
		submitLogin(s, user, pass)
	})
	s.OnClick("profile_button", func(s *Server) {
		s.Show("profile_title", "Profile")
	})
	return s
}

// submitLogin applies the outcome of a submit. The server lock is held.
func submitLogin(s *Server, user, pass string) {
	switch {
	case user == "":
		s.Show("error_message", MsgUsernameRequired)
	case pass == "":
		s.Show("error_message", MsgPasswordRequired)
	case user == ValidUsername && pass == ValidPassword:
		s.Hide("error_message")
		s.Hide("username_input")
		s.Hide("password_input")
		s.Hide("login_button")
		s.Show("home_title", "Home")
		for _, name := range homeElements {
			s.Show(name, "")
		}
	default:
		s.Show("error_message", MsgInvalidCredentials)
	}
}
