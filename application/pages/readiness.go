package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"pfda_functional/domain/entities"
	"pfda_functional/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds the readiness wait of a page
const DefaultTimeout = 10 * time.Second

// scriptsReadyExpression holds once the document finished loading and no jQuery request is in flight
const scriptsReadyExpression = `document.readyState === 'complete' && (typeof window.jQuery === 'undefined' || window.jQuery.active === 0)`

// Option configures a page object
type Option func(*Readiness)

// WithTimeout sets the readiness timeout
func WithTimeout(timeout time.Duration) Option {
	return func(r *Readiness) {
		r.timeout = timeout
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Readiness) {
		r.logger = logger
	}
}

// Readiness provides the wait and presence helpers page objects are built from
type Readiness struct {
	session interfaces.Session
	page    string
	timeout time.Duration
	logger  logrus.FieldLogger
}

// NewReadiness binds the helpers to a session on behalf of the named page
func NewReadiness(session interfaces.Session, page string, opts ...Option) *Readiness {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Readiness{
		session: session,
		page:    page,
		timeout: DefaultTimeout,
		logger:  discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithField("page", page)
	return r
}

// WaitUntilScriptsReady blocks until the page finished its asynchronous setup
func (r *Readiness) WaitUntilScriptsReady(ctx context.Context) error {
	return r.waitFor(ctx, "page scripts ready", r.scriptsReady, r.timeout)
}

// WaitForPageToLoadAndVerify blocks until locator resolves to a visible element
func (r *Readiness) WaitForPageToLoadAndVerify(ctx context.Context, locator entities.Locator) error {
	return r.waitFor(ctx, visibleCondition(locator), r.visible(locator), r.timeout)
}

// WaitForPage runs both readiness waits within one shared timeout
func (r *Readiness) WaitForPage(ctx context.Context, marker entities.Locator) error {
	deadline := time.Now().Add(r.timeout)

	if err := r.waitFor(ctx, "page scripts ready", r.scriptsReady, time.Until(deadline)); err != nil {
		return err
	}
	return r.waitFor(ctx, visibleCondition(marker), r.visible(marker), time.Until(deadline))
}

// IsElementPresent reports whether locator matches an element attached to the DOM.
// Absence is not an error.
func (r *Readiness) IsElementPresent(ctx context.Context, locator entities.Locator) (bool, error) {
	_, err := r.session.FindElement(ctx, locator)
	if errors.Is(err, entities.ErrElementNotFound) {
		r.logger.Debugf("Element %s is not present", locator)
		return false, nil
	}
	if err != nil {
		return false, entities.NewSessionError("element presence", err)
	}
	return true, nil
}

// Element resolves locator at call time
func (r *Readiness) Element(ctx context.Context, locator entities.Locator) (interfaces.Element, error) {
	el, err := r.session.FindElement(ctx, locator)
	if errors.Is(err, entities.ErrElementNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, entities.NewSessionError("find element", err)
	}
	return el, nil
}

func (r *Readiness) scriptsReady(ctx context.Context) (bool, error) {
	result, err := r.session.ExecuteScript(ctx, scriptsReadyExpression)
	if err != nil {
		return false, err
	}
	ready, _ := result.(bool)
	return ready, nil
}

func (r *Readiness) visible(locator entities.Locator) interfaces.Condition {
	return func(ctx context.Context) (bool, error) {
		el, err := r.session.FindElement(ctx, locator)
		if errors.Is(err, entities.ErrElementNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		visible, err := el.IsVisible(ctx)
		if errors.Is(err, entities.ErrStaleElement) {
			r.logger.Debugf("Element %s went stale, polling again", locator)
			return false, nil
		}
		return visible, err
	}
}

func (r *Readiness) waitFor(ctx context.Context, condition string, check interfaces.Condition, timeout time.Duration) error {
	start := time.Now()

	ok, err := r.session.WaitUntil(ctx, check, timeout)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("waiting for %s: %w", condition, err)
		}
		return entities.NewSessionError("wait for "+condition, err)
	}
	if !ok {
		r.logger.Warnf("Gave up waiting for %s after %s", condition, time.Since(start))
		return &entities.PageNotReadyError{
			Page:      r.page,
			Condition: condition,
			Timeout:   r.timeout,
		}
	}

	r.logger.Debugf("Waited %s for %s", time.Since(start), condition)
	return nil
}

func visibleCondition(locator entities.Locator) string {
	return fmt.Sprintf("element %s visible", locator)
}
