package element

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/mobile-pom/pkg/core"
	"github.com/devicelab-dev/mobile-pom/pkg/driver/appium"
	"github.com/devicelab-dev/mobile-pom/pkg/driver/appium/appiumtest"
	"github.com/devicelab-dev/mobile-pom/pkg/locator"
)

// countingDriver records lookups and serves fixed answers.
type countingDriver struct {
	finds    []string
	findErr  error
	stale    int // number of upcoming calls that report a stale element
	text     string
	typed    []string
	clicks   int
	clears   int
	disabled bool
}

func (d *countingDriver) FindElement(strategy, value string) (string, error) {
	d.finds = append(d.finds, strategy+"="+value)
	if d.findErr != nil {
		return "", d.findErr
	}
	return "el-1", nil
}

func (d *countingDriver) staleCheck() error {
	if d.stale > 0 {
		d.stale--
		return core.ErrStaleElement
	}
	return nil
}

func (d *countingDriver) ClickElement(string) error {
	if err := d.staleCheck(); err != nil {
		return err
	}
	d.clicks++
	return nil
}

func (d *countingDriver) ClearElement(string) error {
	d.clears++
	return nil
}

func (d *countingDriver) SendKeysToElement(_ string, text string) error {
	d.typed = append(d.typed, text)
	return nil
}

func (d *countingDriver) GetElementText(string) (string, error) {
	if err := d.staleCheck(); err != nil {
		return "", err
	}
	return d.text, nil
}

func (d *countingDriver) IsElementDisplayed(string) (bool, error) {
	if err := d.staleCheck(); err != nil {
		return false, err
	}
	return true, nil
}

func (d *countingDriver) IsElementEnabled(string) (bool, error) {
	return !d.disabled, nil
}

func TestElement_LazyLookup(t *testing.T) {
	d := &countingDriver{text: "Home"}
	el := New(d, core.PlatformAndroid, locator.ID("home_title"))

	assert.Empty(t, d.finds, "no lookup before first use")

	text, err := el.Text()
	require.NoError(t, err)
	assert.Equal(t, "Home", text)

	_, err = el.Displayed()
	require.NoError(t, err)
	assert.Equal(t, []string{"id=home_title"}, d.finds, "ID is cached after the first lookup")
}

func TestElement_ResolvesPerPlatform(t *testing.T) {
	d := &countingDriver{}
	el := New(d, core.PlatformIOS, locator.ID("search_button"))

	require.NoError(t, el.Click())
	assert.Equal(t, []string{"accessibility id=search_button"}, d.finds)
}

func TestElement_StaleRetriesOnce(t *testing.T) {
	d := &countingDriver{stale: 1}
	el := New(d, core.PlatformAndroid, locator.ID("login_button"))

	require.NoError(t, el.Click())
	assert.Equal(t, 1, d.clicks)
	assert.Len(t, d.finds, 2)
}

func TestElement_StaleTwiceFails(t *testing.T) {
	d := &countingDriver{stale: 2}
	el := New(d, core.PlatformAndroid, locator.ID("login_button"))

	err := el.Click()
	assert.True(t, errors.Is(err, core.ErrStaleElement))
	assert.Equal(t, 0, d.clicks)
}

func TestElement_NotFound(t *testing.T) {
	d := &countingDriver{findErr: core.ErrElementNotFound}
	el := New(d, core.PlatformAndroid, locator.ID("error_message"))

	_, err := el.Displayed()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrElementNotFound))
	assert.Contains(t, err.Error(), "error_message")

	// Every operation looks again while the element is missing.
	_, _ = el.Text()
	assert.Len(t, d.finds, 2)
}

func TestElement_Nil(t *testing.T) {
	var el *Element

	assert.Equal(t, "<nil>", el.Name())
	_, err := el.Displayed()
	assert.True(t, errors.Is(err, core.ErrElementNotFound))
	assert.True(t, errors.Is(el.Click(), core.ErrElementNotFound))
	assert.True(t, errors.Is(el.SendKeys("x"), core.ErrElementNotFound))
}

func TestElement_MissingSelector(t *testing.T) {
	d := &countingDriver{}
	el := New(d, core.PlatformIOS, locator.Locator{Name: "android_only", Android: locator.By{Strategy: locator.ByID, Value: "x"}})

	err := el.Click()
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
	assert.Empty(t, d.finds)
}

func TestElement_AgainstServer(t *testing.T) {
	s := appiumtest.NewServer()
	defer s.Close()
	s.Add("username_input", "")

	client := appium.NewClient(s.URL)
	require.NoError(t, client.Connect(map[string]interface{}{"platformName": "Android"}))

	el := New(client, core.PlatformAndroid, locator.ID("username_input"))
	require.NoError(t, el.SendKeys("first"))
	require.NoError(t, el.Clear())
	require.NoError(t, el.SendKeys("validuser"))

	got, ok := s.Get("username_input")
	require.True(t, ok)
	assert.Equal(t, "validuser", got.Value)

	s.MarkStale("username_input")
	text, err := el.Text()
	require.NoError(t, err)
	assert.Equal(t, "validuser", text)

	missing := New(client, core.PlatformAndroid, locator.ID("error_message"))
	_, err = missing.Displayed()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrElementNotFound))
	var wdErr *appium.WebDriverError
	assert.True(t, errors.As(err, &wdErr))
	assert.Equal(t, "element not found: error_message: no such element: "+
		"An element could not be located on the page using the given search parameters.", err.Error())
}
