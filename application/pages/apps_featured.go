package pages

import (
	"context"

	"pfda_functional/domain/entities"
	"pfda_functional/domain/interfaces"
)

// AppsFeaturedPageName identifies the featured apps page in logs and errors
const AppsFeaturedPageName = "apps featured"

const appsFeaturedActivatedLink = "appsFeaturedActivatedLink"

var appsFeaturedFields = Fields{
	appsFeaturedActivatedLink: entities.AppsFeaturedActivatedLink,
}

// AppsFeaturedPage wraps the featured tab of the apps section
type AppsFeaturedPage struct {
	*Readiness
	fields Fields
}

// NewAppsFeaturedPage waits until the page scripts finished and the apps
// container is visible. It returns *entities.PageNotReadyError on timeout.
func NewAppsFeaturedPage(ctx context.Context, session interfaces.Session, opts ...Option) (*AppsFeaturedPage, error) {
	p := &AppsFeaturedPage{
		Readiness: NewReadiness(session, AppsFeaturedPageName, opts...),
		fields:    appsFeaturedFields,
	}

	if err := p.WaitForPage(ctx, entities.AppsMainDiv); err != nil {
		return nil, err
	}
	return p, nil
}

// GetActivatedLink resolves the activated featured link.
// The error matches entities.ErrElementNotFound when the link is absent.
func (p *AppsFeaturedPage) GetActivatedLink(ctx context.Context) (interfaces.Element, error) {
	locator, err := p.fields.Locator(appsFeaturedActivatedLink)
	if err != nil {
		return nil, err
	}
	return p.Element(ctx, locator)
}

// IsFeaturedLinkActivated reports whether the featured tab is the active one
func (p *AppsFeaturedPage) IsFeaturedLinkActivated(ctx context.Context) (bool, error) {
	locator, err := p.fields.Locator(appsFeaturedActivatedLink)
	if err != nil {
		return false, err
	}
	return p.IsElementPresent(ctx, locator)
}
