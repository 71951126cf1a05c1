package flow

import (
	"context"
	"fmt"
	"time"

	"pfda_functional/application/pages"
	"pfda_functional/domain/entities"
	"pfda_functional/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SiteURL turns a site path into an absolute url
type SiteURL func(path string) string

// Runner drives page checks against a browser and records their results
type Runner struct {
	browser  interfaces.Browser
	store    interfaces.ReportStore
	logger   logrus.FieldLogger
	siteURL  SiteURL
	pageOpts []pages.Option
	now      func() time.Time
}

// NewRunner - creates new check runner. store may be nil.
func NewRunner(browser interfaces.Browser, store interfaces.ReportStore, logger logrus.FieldLogger, siteURL SiteURL, opts ...pages.Option) *Runner {
	return &Runner{
		browser:  browser,
		store:    store,
		logger:   logger,
		siteURL:  siteURL,
		pageOpts: append([]pages.Option{pages.WithLogger(logger)}, opts...),
		now:      time.Now,
	}
}

// CheckFeaturedApps opens the featured apps view and reports whether its tab is activated.
// The returned result is also stored when the check itself failed.
func (r *Runner) CheckFeaturedApps(ctx context.Context) (entities.CheckResult, error) {
	result := entities.CheckResult{
		ID:        uuid.NewString(),
		Page:      pages.AppsFeaturedPageName,
		URL:       r.siteURL(entities.AppsFeaturedPath),
		StartedAt: r.now(),
	}
	log := r.logger.WithFields(logrus.Fields{
		"check": result.ID,
		"page":  result.Page,
	})

	activated, err := r.checkFeaturedApps(ctx, &result)
	result.Activated = activated
	result.Duration = r.now().Sub(result.StartedAt)
	if err != nil {
		result.Error = err.Error()
		log.WithError(err).Error("Featured apps check failed")
	} else {
		log.Infof("Featured link activated: %t", activated)
	}

	if r.store != nil {
		if storeErr := r.store.Append(result); storeErr != nil {
			log.WithError(storeErr).Warn("Failed to save check result")
			if err == nil {
				err = fmt.Errorf("failed to save check result: %w", storeErr)
			}
		}
	}

	return result, err
}

func (r *Runner) checkFeaturedApps(ctx context.Context, result *entities.CheckResult) (bool, error) {
	if err := r.browser.Navigate(ctx, result.URL); err != nil {
		return false, fmt.Errorf("failed to open %s: %w", result.URL, err)
	}

	if url, err := r.browser.CurrentURL(ctx); err == nil {
		result.URL = url
	}

	page, err := pages.NewAppsFeaturedPage(ctx, r.browser, r.pageOpts...)
	if err != nil {
		return false, err
	}

	return page.IsFeaturedLinkActivated(ctx)
}
