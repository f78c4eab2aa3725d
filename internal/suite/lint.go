// internal/suite/lint.go
package suite

import (
	"context"
	"fmt"

	"github.com/antchfx/xpath"

	"github.com/xkilldash9x/sitecheck/internal/browser"
	"github.com/xkilldash9x/sitecheck/internal/runner"
)

// LocatorCheck is the lint result for one locator of one step.
type LocatorCheck struct {
	Step    string
	Query   string
	Err     error
	Matches int
}

// CheckLocators compiles every locator the steps declare.
func CheckLocators(steps []runner.Step) []LocatorCheck {
	var checks []LocatorCheck
	for _, s := range steps {
		for _, q := range s.Locators {
			c := LocatorCheck{Step: s.Name, Query: q, Matches: -1}
			if _, err := xpath.Compile(q); err != nil {
				c.Err = fmt.Errorf("invalid xpath: %w", err)
			}
			checks = append(checks, c)
		}
	}
	return checks
}

// CountMatches fills in how many nodes each valid locator matches in d's
// active window.
func CountMatches(ctx context.Context, d browser.Driver, checks []LocatorCheck) error {
	for i := range checks {
		if checks[i].Err != nil {
			continue
		}
		elems, err := d.FindElements(ctx, checks[i].Query)
		if err != nil {
			return fmt.Errorf("step %s: %w", checks[i].Step, err)
		}
		checks[i].Matches = len(elems)
	}
	return nil
}
