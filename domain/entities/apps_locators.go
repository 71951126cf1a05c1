package entities

// Apps section locators
const (
	AppsMainDiv               Locator = "//div[contains(@class, 'apps-page')]"
	AppsFeaturedLink          Locator = "//ul[contains(@class, 'nav-tabs')]//a[contains(@href, '/apps/featured')]"
	AppsFeaturedActivatedLink Locator = "//ul[contains(@class, 'nav-tabs')]//li[contains(@class, 'active')]/a[contains(@href, '/apps/featured')]"
)

// AppsFeaturedPath is the route of the featured apps view relative to the site root
const AppsFeaturedPath = "/apps/featured"
