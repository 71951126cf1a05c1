// Package browsertest provides an in-memory browser for exercising page
// objects without a real driver.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pfda_functional/domain/entities"
	"pfda_functional/domain/interfaces"
	"pfda_functional/infrastructure/browser"
)

// ErrClosed is the transport failure reported once the session is closed
var ErrClosed = errors.New("invalid session id: session deleted")

// Session is an interfaces.Browser backed by a static set of elements
type Session struct {
	mu           sync.Mutex
	elements     map[entities.Locator]*Element
	appearAfter  map[entities.Locator]int
	lookups      map[entities.Locator]int
	scriptsReady bool
	closed       bool
	url          string
	navigations  []string
	pollInterval time.Duration
}

// NewSession returns an open session whose scripts are ready and whose DOM is empty
func NewSession() *Session {
	return &Session{
		elements:     make(map[entities.Locator]*Element),
		appearAfter:  make(map[entities.Locator]int),
		lookups:      make(map[entities.Locator]int),
		scriptsReady: true,
		url:          "about:blank",
		pollInterval: 5 * time.Millisecond,
	}
}

// Add places an element matching locator into the DOM
func (s *Session) Add(locator entities.Locator, visible bool) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	el := &Element{
		session:    s,
		locator:    locator,
		visible:    visible,
		attributes: make(map[string]string),
	}
	s.elements[locator] = el
	return el
}

// Remove detaches the element matching locator
func (s *Session) Remove(locator entities.Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elements, locator)
}

// AppearAfter hides an added element from the first n lookups of locator
func (s *Session) AppearAfter(locator entities.Locator, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appearAfter[locator] = n
}

// SetScriptsReady controls the value returned by ExecuteScript
func (s *Session) SetScriptsReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scriptsReady = ready
}

// Lookups returns how many times locator was resolved
func (s *Session) Lookups(locator entities.Locator) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups[locator]
}

// Navigations returns every url passed to Navigate
func (s *Session) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return entities.NewSessionError("navigate", ErrClosed)
	}
	s.url = url
	s.navigations = append(s.navigations, url)
	return nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", entities.NewSessionError("current url", ErrClosed)
	}
	return s.url, nil
}

func (s *Session) FindElement(ctx context.Context, locator entities.Locator) (interfaces.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, entities.NewSessionError("find element", ErrClosed)
	}

	s.lookups[locator]++
	el, ok := s.elements[locator]
	if !ok || s.lookups[locator] <= s.appearAfter[locator] {
		return nil, fmt.Errorf("%w: %s", entities.ErrElementNotFound, locator)
	}
	return el, nil
}

func (s *Session) ExecuteScript(ctx context.Context, expression string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, entities.NewSessionError("execute script", ErrClosed)
	}
	return s.scriptsReady, nil
}

func (s *Session) WaitUntil(ctx context.Context, condition interfaces.Condition, timeout time.Duration) (bool, error) {
	s.mu.Lock()
	interval := s.pollInterval
	s.mu.Unlock()

	return browser.Poll(ctx, condition, timeout, interval)
}

// Close ends the session; later queries fail with a SessionError
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Element is an in-memory DOM node
type Element struct {
	session    *Session
	locator    entities.Locator
	visible    bool
	text       string
	attributes map[string]string
	staleFor   int
}

// WithText sets the element text
func (e *Element) WithText(text string) *Element {
	e.text = text
	return e
}

// StaleFor makes the first n visibility queries fail as if the node was re-rendered
func (e *Element) StaleFor(n int) *Element {
	e.staleFor = n
	return e
}

// WithAttribute sets an HTML attribute
func (e *Element) WithAttribute(name, value string) *Element {
	e.attributes[name] = value
	return e
}

func (e *Element) Locator() entities.Locator {
	return e.locator
}

func (e *Element) IsVisible(ctx context.Context) (bool, error) {
	e.session.mu.Lock()
	defer e.session.mu.Unlock()

	if e.session.closed {
		return false, entities.NewSessionError("is visible", ErrClosed)
	}
	if e.staleFor > 0 {
		e.staleFor--
		return false, fmt.Errorf("%w: %s", entities.ErrStaleElement, e.locator)
	}
	return e.visible, nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if e.session.isClosed() {
		return "", entities.NewSessionError("text", ErrClosed)
	}
	return e.text, nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	if e.session.isClosed() {
		return "", entities.NewSessionError("attribute", ErrClosed)
	}
	return e.attributes[name], nil
}

var _ interfaces.Browser = (*Session)(nil)
