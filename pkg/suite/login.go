package suite

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/mobile-pom/pkg/actions"
	"github.com/devicelab-dev/mobile-pom/pkg/logger"
	"github.com/devicelab-dev/mobile-pom/pkg/pages"
)

// Test data for the login cases.
const (
	ValidUsername   = "validuser"
	ValidPassword   = "validpassword"
	InvalidUsername = "invaliduser"
	InvalidPassword = "invalidpassword"
)

// Groups.
const (
	GroupSmoke      = "smoke"
	GroupRegression = "regression"
)

// LoginFixture holds the pages a login case works with.
type LoginFixture struct {
	Login *pages.LoginPage
	Home  *pages.HomePage
}

// LoginSuite returns the login cases. The successful login runs last since
// it leaves the app on the home screen.
func LoginSuite() Suite[LoginFixture] {
	return Suite[LoginFixture]{
		Name: "LoginTest",
		BeforeEach: func(a *actions.Actions) LoginFixture {
			logger.Info("Setting up LoginTest")
			return LoginFixture{
				Login: pages.NewLoginPage(a),
				Home:  pages.NewHomePage(a),
			}
		},
		Cases: []Case[LoginFixture]{
			{
				Name:        "FailedLogin",
				Description: "Verify failed login with invalid credentials",
				Groups:      []string{GroupRegression},
				Run:         failedLogin,
			},
			{
				Name:        "LoginWithEmptyPassword",
				Description: "Verify login with empty password",
				Groups:      []string{GroupRegression},
				Run:         loginWithEmptyPassword,
			},
			{
				Name:        "LoginWithEmptyUsername",
				Description: "Verify login with empty username",
				Groups:      []string{GroupRegression},
				Run:         loginWithEmptyUsername,
			},
			{
				Name:        "SuccessfulLogin",
				Description: "Verify successful login with valid credentials",
				Groups:      []string{GroupSmoke, GroupRegression},
				Run:         successfulLogin,
			},
		},
	}
}

func successfulLogin(t *T, f LoginFixture) {
	logger.Info("Starting test: %s", t.Name())
	f.Login.Login(ValidUsername, ValidPassword)

	require.True(t, f.Home.IsHomePageDisplayed(), "Home page should be displayed after successful login")
	title, err := f.Home.Title()
	require.NoError(t, err)
	assert.Equal(t, pages.HomePageTitle, title, "Home page title should match expected value")
	logger.Info("Completed test: %s", t.Name())
}

func failedLogin(t *T, f LoginFixture) {
	logger.Info("Starting test: %s", t.Name())
	f.Login.Login(InvalidUsername, InvalidPassword)

	assert.False(t, f.Login.IsLoginSuccessful(), "Login should fail with invalid credentials")
	msg, _ := f.Login.ErrorMessage()
	assert.Equal(t, pages.LoginError, msg, "Error message should match expected value")
	logger.Info("Completed test: %s", t.Name())
}

func loginWithEmptyUsername(t *T, f LoginFixture) {
	logger.Info("Starting test: %s", t.Name())
	f.Login.Login("", ValidPassword)

	assert.False(t, f.Login.IsLoginSuccessful(), "Login should fail with empty username")
	_, shown := f.Login.ErrorMessage()
	assert.True(t, shown, "Error message should be displayed")
	logger.Info("Completed test: %s", t.Name())
}

func loginWithEmptyPassword(t *T, f LoginFixture) {
	logger.Info("Starting test: %s", t.Name())
	f.Login.Login(ValidUsername, "")

	assert.False(t, f.Login.IsLoginSuccessful(), "Login should fail with empty password")
	_, shown := f.Login.ErrorMessage()
	assert.True(t, shown, "Error message should be displayed")
	logger.Info("Completed test: %s", t.Name())
}
