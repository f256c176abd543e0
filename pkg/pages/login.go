package pages

import (
	"github.com/devicelab-dev/mobile-pom/pkg/actions"
	"github.com/devicelab-dev/mobile-pom/pkg/component"
	"github.com/devicelab-dev/mobile-pom/pkg/element"
	"github.com/devicelab-dev/mobile-pom/pkg/locator"
	"github.com/devicelab-dev/mobile-pom/pkg/logger"
)

// LoginLocators are the login screen's elements.
var LoginLocators = locator.NewTable(
	locator.ID(UsernameInput),
	locator.ID(PasswordInput),
	locator.ID(LoginButton),
	locator.ID(ErrorMessage),
)

// LoginState tracks where a login attempt stands.
type LoginState int

const (
	LoginInitial            LoginState = iota // Nothing entered yet
	LoginCredentialsEntered                   // At least one field typed
	LoginSubmitted                            // Login button clicked, outcome not checked
	LoginSucceeded                            // No error shown after submit
	LoginFailed                               // Error shown after submit
)

func (s LoginState) String() string {
	switch s {
	case LoginInitial:
		return "initial"
	case LoginCredentialsEntered:
		return "credentials_entered"
	case LoginSubmitted:
		return "submitted"
	case LoginSucceeded:
		return "succeeded"
	case LoginFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoginPage is the login screen.
type LoginPage struct {
	actions *actions.Actions
	button  *component.Button

	usernameInput *element.Element
	passwordInput *element.Element
	loginButton   *element.Element
	errorMessage  *element.Element

	state LoginState
	err   error
}

// NewLoginPage builds the page. No element is looked up until used.
func NewLoginPage(a *actions.Actions) *LoginPage {
	return &LoginPage{
		actions:       a,
		button:        component.NewButton(a),
		usernameInput: a.Element(LoginLocators[UsernameInput]),
		passwordInput: a.Element(LoginLocators[PasswordInput]),
		loginButton:   a.Element(LoginLocators[LoginButton]),
		errorMessage:  a.Element(LoginLocators[ErrorMessage]),
	}
}

// EnterUsername replaces the username field's content.
func (p *LoginPage) EnterUsername(username string) *LoginPage {
	logger.Info("Entering username: %s", username)
	p.enter(p.usernameInput, username)
	return p
}

// EnterPassword replaces the password field's content.
func (p *LoginPage) EnterPassword(password string) *LoginPage {
	logger.Info("Entering password")
	p.enter(p.passwordInput, password)
	return p
}

func (p *LoginPage) enter(el *element.Element, text string) {
	if err := p.actions.Type(el, text); err != nil {
		logger.Error("Failed to enter %s: %v", el.Name(), err)
		p.err = err
		return
	}
	p.state = LoginCredentialsEntered
}

// ClickLoginButton submits the form.
func (p *LoginPage) ClickLoginButton() *LoginPage {
	logger.Info("Clicking login button")
	if res := p.button.Click(p.loginButton, LoginPageTitle); !res.OK() {
		p.err = res.Err
		return p
	}
	p.state = LoginSubmitted
	return p
}

// Login enters both credentials and submits. It does not wait for the outcome.
func (p *LoginPage) Login(username, password string) *LoginPage {
	logger.Info("Performing login with username: %s", username)
	return p.EnterUsername(username).EnterPassword(password).ClickLoginButton()
}

// ErrorMessage returns the error banner text, or false when no banner is shown.
func (p *LoginPage) ErrorMessage() (string, bool) {
	if !p.actions.IsDisplayed(p.errorMessage) {
		return "", false
	}
	message, err := p.actions.ReadText(p.errorMessage)
	if err != nil {
		logger.Warn("Error message disappeared before it could be read: %v", err)
		return "", false
	}
	logger.Info("Error message displayed: %s", message)
	return message, true
}

// IsLoginSuccessful reports whether no error banner is currently displayed.
// It does not wait, so calling it before the app has reacted to a submit
// reports success. After a submit it also settles State.
func (p *LoginPage) IsLoginSuccessful() bool {
	ok := !p.actions.IsDisplayed(p.errorMessage)
	if ok {
		logger.Info("Login successful")
	} else {
		logger.Info("Login failed")
	}
	if p.state == LoginSubmitted {
		if ok {
			p.state = LoginSucceeded
		} else {
			p.state = LoginFailed
		}
	}
	return ok
}

// State returns the current login attempt state.
func (p *LoginPage) State() LoginState {
	return p.state
}

// Err returns the last error from entering credentials or submitting.
func (p *LoginPage) Err() error {
	return p.err
}
