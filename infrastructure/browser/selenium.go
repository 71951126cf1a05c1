package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"pfda_functional/domain/entities"
	"pfda_functional/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

// DefaultSeleniumPort is the port chromedriver listens on
const DefaultSeleniumPort = 9515

// SeleniumOptions configures a ChromeDriver-backed browser
type SeleniumOptions struct {
	DriverPath   string
	ChromeBinary string
	Port         int
	Headless     bool
	PollInterval time.Duration
}

// SeleniumSession implements interfaces.Browser on top of a WebDriver
type SeleniumSession struct {
	wd           selenium.WebDriver
	service      *selenium.Service
	logger       logrus.FieldLogger
	pollInterval time.Duration
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// NewSeleniumSession - starts chromedriver and opens a remote WebDriver session
func NewSeleniumSession(logger logrus.FieldLogger, opts SeleniumOptions) (*SeleniumSession, error) {
	driverPath, err := findChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	port := opts.Port
	if port == 0 {
		port = DefaultSeleniumPort
	}

	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	caps := selenium.Capabilities{
		"browserName": "chrome",
	}

	chromeCaps := chrome.Capabilities{
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--window-size=1280,720",
		},
	}
	if opts.Headless {
		chromeCaps.Args = append(chromeCaps.Args, "--headless=new")
	}

	if chromeBinary := findChromeBinary(opts.ChromeBinary); chromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
		chromeCaps.Path = chromeBinary
	}

	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		service.Stop()
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	session := NewWebDriverSession(wd, logger, opts.PollInterval)
	session.service = service
	return session, nil
}

// NewWebDriverSession wraps a WebDriver owned by the caller
func NewWebDriverSession(wd selenium.WebDriver, logger logrus.FieldLogger, pollInterval time.Duration) *SeleniumSession {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &SeleniumSession{
		wd:           wd,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// Navigate - navigates browser to specified URL
func (s *SeleniumSession) Navigate(ctx context.Context, url string) error {
	s.logger.Infof("Navigating to: %s", url)
	if err := s.wd.Get(url); err != nil {
		return entities.NewSessionError("navigate", err)
	}
	return nil
}

// CurrentURL - returns current page URL
func (s *SeleniumSession) CurrentURL(ctx context.Context) (string, error) {
	url, err := s.wd.CurrentURL()
	if err != nil {
		return "", entities.NewSessionError("current url", err)
	}
	return url, nil
}

// FindElement - resolves a locator against the current DOM
func (s *SeleniumSession) FindElement(ctx context.Context, locator entities.Locator) (interfaces.Element, error) {
	elements, err := s.wd.FindElements(seleniumBy(locator), locator.String())
	if err != nil {
		return nil, entities.NewSessionError("find element", err)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrElementNotFound, locator)
	}

	return &seleniumElement{locator: locator, elem: elements[0]}, nil
}

// ExecuteScript - evaluates a JavaScript expression in the page
func (s *SeleniumSession) ExecuteScript(ctx context.Context, expression string) (interface{}, error) {
	result, err := s.wd.ExecuteScript(seleniumScript(expression), nil)
	if err != nil {
		return nil, entities.NewSessionError("execute script", err)
	}
	return result, nil
}

// WaitUntil - polls condition until it holds or timeout elapses
func (s *SeleniumSession) WaitUntil(ctx context.Context, condition interfaces.Condition, timeout time.Duration) (bool, error) {
	return Poll(ctx, condition, timeout, s.pollInterval)
}

// Close - closes browser and stops ChromeDriver service
func (s *SeleniumSession) Close() error {
	if s.service == nil {
		return nil
	}

	var closeErr error
	if s.wd != nil {
		if err := s.wd.Quit(); err != nil {
			closeErr = fmt.Errorf("failed to quit webdriver: %w", err)
		}
		s.wd = nil
	}

	if err := s.service.Stop(); err != nil {
		closeErr = errors.Join(closeErr, fmt.Errorf("failed to stop chromedriver: %w", err))
	}
	s.service = nil

	return closeErr
}

type seleniumElement struct {
	locator entities.Locator
	elem    selenium.WebElement
}

func (e *seleniumElement) Locator() entities.Locator {
	return e.locator
}

func (e *seleniumElement) IsVisible(ctx context.Context) (bool, error) {
	displayed, err := e.elem.IsDisplayed()
	if err != nil {
		return false, elementError("is visible", err)
	}
	return displayed, nil
}

func (e *seleniumElement) Text(ctx context.Context) (string, error) {
	text, err := e.elem.Text()
	if err != nil {
		return "", elementError("text", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *seleniumElement) Attribute(ctx context.Context, name string) (string, error) {
	value, err := e.elem.GetAttribute(name)
	if err != nil {
		return "", elementError("attribute", err)
	}
	return value, nil
}

// elementError - reports a detached element as stale and everything else as a session failure
func elementError(op string, err error) error {
	if strings.Contains(err.Error(), "stale element reference") {
		return fmt.Errorf("%w: %v", entities.ErrStaleElement, err)
	}
	return entities.NewSessionError(op, err)
}

// seleniumBy - maps a locator strategy to a WebDriver "by" value
func seleniumBy(locator entities.Locator) string {
	if locator.Strategy() == entities.StrategyXPath {
		return selenium.ByXPATH
	}
	return selenium.ByCSSSelector
}

// seleniumScript - turns an expression into a script body returning its value
func seleniumScript(expression string) string {
	return "return (" + expression + ");"
}

var _ interfaces.Browser = (*SeleniumSession)(nil)
