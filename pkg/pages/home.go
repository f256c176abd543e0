package pages

import (
	"github.com/devicelab-dev/mobile-pom/pkg/actions"
	"github.com/devicelab-dev/mobile-pom/pkg/component"
	"github.com/devicelab-dev/mobile-pom/pkg/element"
	"github.com/devicelab-dev/mobile-pom/pkg/locator"
	"github.com/devicelab-dev/mobile-pom/pkg/logger"
)

// HomeLocators are the home screen's elements.
var HomeLocators = locator.NewTable(
	locator.ID(HomeTitle),
	locator.ID(ProfileButton),
	locator.ID(SettingsButton),
	locator.ID(NotificationsButton),
	locator.ID(SearchButton),
)

// HomePage is the screen shown after a successful login.
type HomePage struct {
	actions *actions.Actions
	button  *component.Button

	homeTitle           *element.Element
	profileButton       *element.Element
	settingsButton      *element.Element
	notificationsButton *element.Element
	searchButton        *element.Element
}

// NewHomePage builds the page. No element is looked up until used.
func NewHomePage(a *actions.Actions) *HomePage {
	return &HomePage{
		actions:             a,
		button:              component.NewButton(a),
		homeTitle:           a.Element(HomeLocators[HomeTitle]),
		profileButton:       a.Element(HomeLocators[ProfileButton]),
		settingsButton:      a.Element(HomeLocators[SettingsButton]),
		notificationsButton: a.Element(HomeLocators[NotificationsButton]),
		searchButton:        a.Element(HomeLocators[SearchButton]),
	}
}

// IsHomePageDisplayed checks the title once, without waiting.
func (p *HomePage) IsHomePageDisplayed() bool {
	displayed := p.actions.IsDisplayed(p.homeTitle)
	if displayed {
		logger.Info("Home page is displayed")
	} else {
		logger.Info("Home page is not displayed")
	}
	return displayed
}

// Title waits for the title and returns its text.
func (p *HomePage) Title() (string, error) {
	title, err := p.actions.ReadText(p.homeTitle)
	if err != nil {
		logger.Error("Failed to read home page title: %v", err)
		return "", err
	}
	logger.Info("Home page title: %s", title)
	return title, nil
}

// NavigateToProfile taps the profile button.
func (p *HomePage) NavigateToProfile() component.Result[bool] {
	logger.Info("Navigating to profile page")
	return p.button.Click(p.profileButton, "Profile")
}

// NavigateToSettings taps the settings button.
func (p *HomePage) NavigateToSettings() component.Result[bool] {
	logger.Info("Navigating to settings page")
	return p.button.Click(p.settingsButton, "Settings")
}

// NavigateToNotifications taps the notifications button.
func (p *HomePage) NavigateToNotifications() component.Result[bool] {
	logger.Info("Navigating to notifications page")
	return p.button.Click(p.notificationsButton, "Notifications")
}

// OpenSearch taps the search button.
func (p *HomePage) OpenSearch() component.Result[bool] {
	logger.Info("Opening search")
	return p.button.Click(p.searchButton, "Search")
}

// WaitForHomePageToLoad waits for the title to become visible.
func (p *HomePage) WaitForHomePageToLoad() (*HomePage, error) {
	logger.Info("Waiting for home page to load")
	if _, err := p.actions.WaitForVisibility(p.homeTitle); err != nil {
		return p, err
	}
	return p, nil
}
