package pages

import (
	"fmt"

	"pfda_functional/domain/entities"
)

// Fields binds the element names of a page to their locators
type Fields map[string]entities.Locator

// Locator returns the locator bound to name
func (f Fields) Locator(name string) (entities.Locator, error) {
	locator, ok := f[name]
	if !ok {
		return "", fmt.Errorf("no locator bound to field %q", name)
	}
	return locator, nil
}
