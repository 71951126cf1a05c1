package interfaces

import (
	"context"
	"time"

	"pfda_functional/domain/entities"
)

// Condition is polled by Session.WaitUntil. Returning an error aborts the wait.
type Condition func(ctx context.Context) (bool, error)

// Element is a handle to a DOM node resolved from a locator
type Element interface {
	// Locator returns the locator the element was resolved from
	Locator() entities.Locator

	// IsVisible checks if the element is rendered and visible
	IsVisible(ctx context.Context) (bool, error)

	// Text returns the visible text of the element
	Text(ctx context.Context) (string, error)

	// Attribute returns the value of an HTML attribute
	Attribute(ctx context.Context, name string) (string, error)
}

// Session defines the browser session contract consumed by page objects
type Session interface {
	// FindElement resolves a locator against the current DOM.
	// Returns entities.ErrElementNotFound when nothing matches and
	// *entities.SessionError on driver failure.
	FindElement(ctx context.Context, locator entities.Locator) (Element, error)

	// ExecuteScript evaluates a JavaScript expression and returns its value
	ExecuteScript(ctx context.Context, expression string) (interface{}, error)

	// WaitUntil polls condition until it holds or timeout elapses.
	// Returns false without error on timeout.
	WaitUntil(ctx context.Context, condition Condition, timeout time.Duration) (bool, error)
}

// Browser is a Session that also owns navigation and its own lifetime
type Browser interface {
	Session

	// Navigate navigates to a URL
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the current page URL
	CurrentURL(ctx context.Context) (string, error)

	// Close closes the browser
	Close() error
}
