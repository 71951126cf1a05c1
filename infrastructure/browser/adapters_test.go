package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pfda_functional/domain/entities"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"
)

type fakeWebDriver struct {
	selenium.WebDriver
	elements  []selenium.WebElement
	err       error
	script    interface{}
	lastBy    string
	lastQuery string
}

func (d *fakeWebDriver) FindElements(by, value string) ([]selenium.WebElement, error) {
	d.lastBy, d.lastQuery = by, value
	return d.elements, d.err
}

func (d *fakeWebDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	d.lastQuery = script
	return d.script, d.err
}

type fakeWebElement struct {
	selenium.WebElement
	displayed bool
	err       error
}

func (e *fakeWebElement) IsDisplayed() (bool, error) {
	return e.displayed, e.err
}

type fakePage struct {
	playwright.Page
	closed    bool
	locator   *fakeLocator
	selector  string
	evaluated string
	result    interface{}
	err       error
}

func (p *fakePage) IsClosed() bool {
	return p.closed
}

func (p *fakePage) Locator(selector string, options ...playwright.PageLocatorOptions) playwright.Locator {
	p.selector = selector
	return p.locator
}

func (p *fakePage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	p.evaluated = expression
	return p.result, p.err
}

// pwLocator aliases playwright.Locator so the embedded field is not named
// "Locator", which would shadow the interface's Locator method.
type pwLocator = playwright.Locator

type fakeLocator struct {
	pwLocator
	count   int
	err     error
	visible bool
}

func (l *fakeLocator) Count() (int, error) {
	return l.count, l.err
}

func (l *fakeLocator) First() playwright.Locator {
	return l
}

func (l *fakeLocator) IsVisible(options ...playwright.LocatorIsVisibleOptions) (bool, error) {
	return l.visible, nil
}

func newSeleniumTestSession(wd *fakeWebDriver) *SeleniumSession {
	logger, _ := test.NewNullLogger()
	return NewWebDriverSession(wd, logger, time.Millisecond)
}

func newPlaywrightTestSession(page *fakePage) *PlaywrightSession {
	logger, _ := test.NewNullLogger()
	return NewPlaywrightPageSession(page, logger, time.Millisecond)
}

func TestSeleniumSession_FindElement(t *testing.T) {
	ctx := context.Background()

	t.Run("no match", func(t *testing.T) {
		wd := &fakeWebDriver{}
		el, err := newSeleniumTestSession(wd).FindElement(ctx, entities.AppsFeaturedActivatedLink)

		assert.Nil(t, el)
		assert.ErrorIs(t, err, entities.ErrElementNotFound)
		var sessionErr *entities.SessionError
		assert.False(t, errors.As(err, &sessionErr))
		assert.Equal(t, selenium.ByXPATH, wd.lastBy)
		assert.Equal(t, string(entities.AppsFeaturedActivatedLink), wd.lastQuery)
	})

	t.Run("match", func(t *testing.T) {
		wd := &fakeWebDriver{elements: []selenium.WebElement{&fakeWebElement{displayed: true}}}
		el, err := newSeleniumTestSession(wd).FindElement(ctx, "#apps")
		require.NoError(t, err)

		assert.Equal(t, entities.Locator("#apps"), el.Locator())
		assert.Equal(t, selenium.ByCSSSelector, wd.lastBy)
		visible, err := el.IsVisible(ctx)
		require.NoError(t, err)
		assert.True(t, visible)
	})

	t.Run("session deleted", func(t *testing.T) {
		cause := errors.New("invalid session id: session deleted because of page crash")
		wd := &fakeWebDriver{err: cause}
		_, err := newSeleniumTestSession(wd).FindElement(ctx, entities.AppsMainDiv)

		var sessionErr *entities.SessionError
		require.ErrorAs(t, err, &sessionErr)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, entities.ErrElementNotFound)
	})
}

func TestSeleniumElement_IsVisibleErrors(t *testing.T) {
	ctx := context.Background()

	stale := &seleniumElement{locator: entities.AppsMainDiv, elem: &fakeWebElement{
		err: errors.New("stale element reference: element is not attached to the page document"),
	}}
	_, err := stale.IsVisible(ctx)
	assert.ErrorIs(t, err, entities.ErrStaleElement)
	var sessionErr *entities.SessionError
	assert.False(t, errors.As(err, &sessionErr))

	broken := &seleniumElement{locator: entities.AppsMainDiv, elem: &fakeWebElement{
		err: errors.New("invalid session id"),
	}}
	_, err = broken.IsVisible(ctx)
	assert.ErrorAs(t, err, &sessionErr)
}

func TestSeleniumSession_ExecuteScript(t *testing.T) {
	ctx := context.Background()

	wd := &fakeWebDriver{script: true}
	result, err := newSeleniumTestSession(wd).ExecuteScript(ctx, "document.readyState === 'complete'")
	require.NoError(t, err)
	assert.Equal(t, true, result)
	assert.Equal(t, "return (document.readyState === 'complete');", wd.lastQuery)

	wd = &fakeWebDriver{err: errors.New("invalid session id")}
	_, err = newSeleniumTestSession(wd).ExecuteScript(ctx, "1")
	var sessionErr *entities.SessionError
	assert.ErrorAs(t, err, &sessionErr)
}

func TestPlaywrightSession_FindElement(t *testing.T) {
	ctx := context.Background()

	t.Run("no match", func(t *testing.T) {
		page := &fakePage{locator: &fakeLocator{}}
		el, err := newPlaywrightTestSession(page).FindElement(ctx, entities.AppsFeaturedActivatedLink)

		assert.Nil(t, el)
		assert.ErrorIs(t, err, entities.ErrElementNotFound)
		var sessionErr *entities.SessionError
		assert.False(t, errors.As(err, &sessionErr))
		assert.Equal(t, "xpath="+string(entities.AppsFeaturedActivatedLink), page.selector)
	})

	t.Run("match", func(t *testing.T) {
		page := &fakePage{locator: &fakeLocator{count: 2, visible: true}}
		el, err := newPlaywrightTestSession(page).FindElement(ctx, entities.AppsMainDiv)
		require.NoError(t, err)

		visible, err := el.IsVisible(ctx)
		require.NoError(t, err)
		assert.True(t, visible)
	})

	t.Run("driver failure", func(t *testing.T) {
		cause := fmt.Errorf("%w: browser has been closed", playwright.ErrTargetClosed)
		page := &fakePage{locator: &fakeLocator{err: cause}}
		_, err := newPlaywrightTestSession(page).FindElement(ctx, entities.AppsMainDiv)

		var sessionErr *entities.SessionError
		require.ErrorAs(t, err, &sessionErr)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("page closed", func(t *testing.T) {
		page := &fakePage{closed: true, locator: &fakeLocator{count: 1}}
		_, err := newPlaywrightTestSession(page).FindElement(ctx, entities.AppsMainDiv)

		var sessionErr *entities.SessionError
		require.ErrorAs(t, err, &sessionErr)
		assert.Empty(t, page.selector)
	})
}

func TestPlaywrightSession_ExecuteScript(t *testing.T) {
	ctx := context.Background()

	page := &fakePage{result: true}
	result, err := newPlaywrightTestSession(page).ExecuteScript(ctx, "1 + 1")
	require.NoError(t, err)
	assert.Equal(t, true, result)
	assert.Equal(t, "() => (1 + 1)", page.evaluated)

	closed := &fakePage{closed: true}
	_, err = newPlaywrightTestSession(closed).ExecuteScript(ctx, "1")
	var sessionErr *entities.SessionError
	assert.ErrorAs(t, err, &sessionErr)
}

func TestPlaywrightSession_WaitUntilPolls(t *testing.T) {
	calls := 0
	ok, err := newPlaywrightTestSession(&fakePage{}).WaitUntil(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return calls == 2, nil
	}, time.Second)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, calls)
}

func TestIsClosedError(t *testing.T) {
	assert.True(t, isClosedError(playwright.ErrTargetClosed))
	assert.True(t, isClosedError(fmt.Errorf("close context: %w", playwright.ErrTargetClosed)))
	assert.False(t, isClosedError(errors.New("open state.json: file already closed")))
	assert.False(t, isClosedError(errors.New("permission denied")))
}
