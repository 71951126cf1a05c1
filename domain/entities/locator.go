package entities

import "strings"

// Locator is a selector string identifying where an element lives on a page.
// Values starting with "/" or "(" are XPath expressions, anything else is CSS.
type Locator string

// Strategy represents how a locator is interpreted by the browser driver
type Strategy string

const (
	StrategyXPath Strategy = "xpath"
	StrategyCSS   Strategy = "css"
)

// Strategy returns the selector strategy for the locator
func (l Locator) Strategy() Strategy {
	s := strings.TrimSpace(string(l))
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(") {
		return StrategyXPath
	}
	return StrategyCSS
}

func (l Locator) String() string {
	return string(l)
}
