package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pfda_functional/domain/entities"
	"pfda_functional/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

var errPageClosed = errors.New("page is closed")

// PlaywrightOptions configures a Playwright-backed browser
type PlaywrightOptions struct {
	Headless          bool
	PollInterval      time.Duration
	NavigationTimeout time.Duration
	// StorageStatePath is loaded on start when present and written on Close
	StorageStatePath string
}

// PlaywrightSession implements interfaces.Browser on top of a playwright page
type PlaywrightSession struct {
	pw               *playwright.Playwright
	browser          playwright.Browser
	context          playwright.BrowserContext
	page             playwright.Page
	logger           logrus.FieldLogger
	pollInterval     time.Duration
	navTimeout       time.Duration
	storageStatePath string
}

// NewPlaywrightSession - starts playwright, launches chromium and opens a page
func NewPlaywrightSession(logger logrus.FieldLogger, opts PlaywrightOptions) (*PlaywrightSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	}

	if opts.StorageStatePath != "" {
		if data, err := os.ReadFile(opts.StorageStatePath); err == nil {
			var storageState playwright.StorageState
			if err := json.Unmarshal(data, &storageState); err == nil {
				contextOptions.StorageState = storageState.ToOptionalStorageState()
				logger.Infof("Loaded browser storage state from: %s", opts.StorageStatePath)
			}
		}
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(contextOptions)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		dialog.Accept()
	})

	session := NewPlaywrightPageSession(page, logger, opts.PollInterval)
	session.pw = pw
	session.browser = browser
	session.context = bctx
	session.storageStatePath = opts.StorageStatePath
	if opts.NavigationTimeout > 0 {
		session.navTimeout = opts.NavigationTimeout
	}
	return session, nil
}

// NewPlaywrightPageSession wraps a page owned by the caller. Close on the
// returned session does not close the page.
func NewPlaywrightPageSession(page playwright.Page, logger logrus.FieldLogger, pollInterval time.Duration) *PlaywrightSession {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &PlaywrightSession{
		page:         page,
		logger:       logger,
		pollInterval: pollInterval,
		navTimeout:   30 * time.Second,
	}
}

// Navigate - navigates to the specified URL and waits for network idle
func (s *PlaywrightSession) Navigate(ctx context.Context, url string) error {
	s.logger.Infof("Navigating to: %s", url)

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(s.navTimeout.Milliseconds())),
	})
	if err != nil {
		return entities.NewSessionError("navigate", err)
	}
	return nil
}

// CurrentURL - returns the current page URL
func (s *PlaywrightSession) CurrentURL(ctx context.Context) (string, error) {
	if s.page.IsClosed() {
		return "", entities.NewSessionError("current url", errPageClosed)
	}
	return s.page.URL(), nil
}

// FindElement - resolves a locator against the current DOM
func (s *PlaywrightSession) FindElement(ctx context.Context, locator entities.Locator) (interfaces.Element, error) {
	if s.page.IsClosed() {
		return nil, entities.NewSessionError("find element", errPageClosed)
	}

	handle := s.page.Locator(playwrightSelector(locator))
	count, err := handle.Count()
	if err != nil {
		return nil, entities.NewSessionError("find element", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrElementNotFound, locator)
	}

	return &playwrightElement{locator: locator, handle: handle.First()}, nil
}

// ExecuteScript - evaluates a JavaScript expression in the page
func (s *PlaywrightSession) ExecuteScript(ctx context.Context, expression string) (interface{}, error) {
	if s.page.IsClosed() {
		return nil, entities.NewSessionError("execute script", errPageClosed)
	}

	result, err := s.page.Evaluate(playwrightFunction(expression))
	if err != nil {
		return nil, entities.NewSessionError("execute script", err)
	}
	return result, nil
}

// WaitUntil - polls condition until it holds or timeout elapses
func (s *PlaywrightSession) WaitUntil(ctx context.Context, condition interfaces.Condition, timeout time.Duration) (bool, error) {
	return Poll(ctx, condition, timeout, s.pollInterval)
}

// SaveState - saves cookies and local storage so later runs reuse the login
func (s *PlaywrightSession) SaveState() error {
	if s.context == nil || s.storageStatePath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.storageStatePath), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if _, err := s.context.StorageState(s.storageStatePath); err != nil {
		if isClosedError(err) {
			return nil
		}
		return fmt.Errorf("failed to save browser state: %w", err)
	}
	return nil
}

// Close - saves state and closes the browser it launched
func (s *PlaywrightSession) Close() error {
	if s.pw == nil {
		return nil
	}

	var closeErr error
	if err := s.SaveState(); err != nil {
		closeErr = err
	}

	if s.context != nil {
		if err := s.context.Close(); err != nil && !isClosedError(err) {
			closeErr = errors.Join(closeErr, fmt.Errorf("failed to close context: %w", err))
		}
		s.context = nil
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil && !isClosedError(err) {
			closeErr = errors.Join(closeErr, fmt.Errorf("failed to close browser: %w", err))
		}
		s.browser = nil
	}

	if err := s.pw.Stop(); err != nil {
		closeErr = errors.Join(closeErr, fmt.Errorf("failed to stop playwright: %w", err))
	}
	s.pw = nil

	return closeErr
}

type playwrightElement struct {
	locator entities.Locator
	handle  playwright.Locator
}

func (e *playwrightElement) Locator() entities.Locator {
	return e.locator
}

func (e *playwrightElement) IsVisible(ctx context.Context) (bool, error) {
	visible, err := e.handle.IsVisible()
	if err != nil {
		return false, entities.NewSessionError("is visible", err)
	}
	return visible, nil
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	text, err := e.handle.TextContent()
	if err != nil {
		return "", entities.NewSessionError("text", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *playwrightElement) Attribute(ctx context.Context, name string) (string, error) {
	value, err := e.handle.GetAttribute(name)
	if err != nil {
		return "", entities.NewSessionError("attribute", err)
	}
	return value, nil
}

// playwrightSelector - prefixes the locator with its selector engine
func playwrightSelector(locator entities.Locator) string {
	if locator.Strategy() == entities.StrategyXPath {
		return "xpath=" + locator.String()
	}
	return "css=" + locator.String()
}

// playwrightFunction - wraps an expression into an arrow function for page.Evaluate
func playwrightFunction(expression string) string {
	return "() => (" + expression + ")"
}

// isClosedError - reports whether err only says the target is already closed
func isClosedError(err error) bool {
	return errors.Is(err, playwright.ErrTargetClosed)
}

var _ interfaces.Browser = (*PlaywrightSession)(nil)
