// Package pages contains the page objects for the app under test.
//
// Pages are built from an injected *actions.Actions. Each page declares its
// locators in a table and exposes intent-level methods; callers never touch
// locators or waits directly.
package pages

// Page titles and messages shown by the app.
const (
	LoginPageTitle   = "Login"
	HomePageTitle    = "Home"
	ProfilePageTitle = "Profile"

	LoginError   = "Invalid username or password"
	NetworkError = "Network connection error"
)

// Locator names. Android resource ids and iOS accessibility ids share them.
const (
	UsernameInput = "username_input"
	PasswordInput = "password_input"
	LoginButton   = "login_button"
	ErrorMessage  = "error_message"

	HomeTitle           = "home_title"
	ProfileButton       = "profile_button"
	SettingsButton      = "settings_button"
	NotificationsButton = "notifications_button"
	SearchButton        = "search_button"
)
