// internal/suite/steps.go
package suite

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/sitecheck/internal/runner"
)

func hoverStep(name, label, query string) runner.Step {
	return runner.Step{
		Name:        name,
		Description: fmt.Sprintf("Hover over the *%s* menu item.", label),
		Locators:    []string{query},
		Run: func(ctx context.Context, t *runner.T) error {
			if _, err := t.WaitFor(ctx, query); err != nil {
				return err
			}
			t.Info("Located '%s' menu item.", label)
			if _, err := t.Hover(ctx, query); err != nil {
				return err
			}
			t.Pass("'%s' hover action performed successfully.", label)
			return t.Settle(ctx)
		},
	}
}

// serviceStep checks the n-th service card, optionally scrolling first.
func serviceStep(name, label string, n, scroll int) runner.Step {
	query := serviceCard(n)
	return runner.Step{
		Name:        name,
		Description: fmt.Sprintf("Verify the presence of the *%s* service card.", label),
		Locators:    []string{query},
		Run: func(ctx context.Context, t *runner.T) error {
			if scroll > 0 {
				if err := t.ScrollBy(ctx, scroll); err != nil {
					return err
				}
				t.Info("Scrolled down by %d pixels.", scroll)
			}
			el, err := t.ScrollIntoView(ctx, query)
			if err != nil {
				return err
			}
			t.Info("Scrolled to the %s service card.", label)
			if err := t.Settle(ctx); err != nil {
				return err
			}
			text, err := el.Text(ctx)
			if err != nil {
				return err
			}
			t.Pass("%s service found with text: %s", label, text)
			return nil
		},
	}
}

// sliderStep clicks the hero slider's left arrow and expects one of the two
// known slide texts to be present afterwards.
func sliderStep(name, description string) runner.Step {
	return runner.Step{
		Name:        name,
		Description: description,
		Locators:    []string{sliderLeftArrow, sliderText1, sliderText2},
		Run: func(ctx context.Context, t *runner.T) error {
			if err := t.Click(ctx, sliderLeftArrow); err != nil {
				return err
			}
			t.Info("Clicked on left arrow of the slider.")
			if err := t.Settle(ctx); err != nil {
				return err
			}

			for _, q := range []string{sliderText1, sliderText2} {
				found, err := t.Exists(ctx, q)
				if err != nil {
					return err
				}
				if found {
					text, err := t.Text(ctx, q)
					if err != nil {
						return err
					}
					t.Pass("Slider text is present: %s", text)
					return nil
				}
			}
			return t.Assertf(false, "neither of the expected slider texts is present")
		},
	}
}

func detailStep(name, title, titleQuery, detailsQuery string) runner.Step {
	return runner.Step{
		Name:        name,
		Description: fmt.Sprintf("Verify the *%s* section and its details.", title),
		Locators:    []string{titleQuery, detailsQuery},
		Run: func(ctx context.Context, t *runner.T) error {
			titleText, err := t.Text(ctx, titleQuery)
			if err != nil {
				return err
			}
			t.Pass("Section title found: %s", titleText)
			details, err := t.Text(ctx, detailsQuery)
			if err != nil {
				return err
			}
			t.Pass("Details found: %s", details)
			return nil
		},
	}
}

// scrollAndRead scrolls query into view and logs its text with passFormat.
func scrollAndRead(query, passFormat string) func(ctx context.Context, t *runner.T) error {
	return func(ctx context.Context, t *runner.T) error {
		el, err := t.ScrollIntoView(ctx, query)
		if err != nil {
			return err
		}
		text, err := el.Text(ctx)
		if err != nil {
			return err
		}
		t.Pass(passFormat, text)
		return nil
	}
}

// verifyLogoAndText reads the hero text and checks the logo. A hidden logo
// is logged as a failure without ending the step.
func verifyLogoAndText(ctx context.Context, t *runner.T) error {
	text, err := t.Text(ctx, heroText)
	if err != nil {
		return err
	}
	t.Info("Text near logo found: %s", text)

	displayed, err := t.Visible(ctx, logo)
	if err != nil {
		return err
	}
	t.Info("Logo display status: %t", displayed)
	if displayed {
		t.Pass("Recode logo is displayed correctly.")
	} else {
		t.Fail("Recode logo is not displayed.")
	}
	return nil
}

func navigateToAILedAutomation(ctx context.Context, t *runner.T) error {
	if err := t.Click(ctx, aiLedLink); err != nil {
		return err
	}
	t.Info("Clicked on AI-Led Automation section link.")
	if err := t.Settle(ctx); err != nil {
		return err
	}

	heading, err := t.Text(ctx, aiLedHeading)
	if err != nil {
		return err
	}
	t.Pass("AI-Led page heading: %s", heading)

	if err := t.Click(ctx, logo); err != nil {
		return err
	}
	t.Info("Clicked on Recode logo to return to home page.")
	return t.Settle(ctx)
}

func (h *home) getStarted(ctx context.Context, t *runner.T) error {
	original, err := t.Driver().CurrentWindow(ctx)
	if err != nil {
		return err
	}
	h.originalWindow = original

	closed, err := t.HandleNewWindows(ctx, func(ctx context.Context) error {
		if err := t.Click(ctx, getStartedButton); err != nil {
			return err
		}
		t.Info("Clicked on 'Get Started' button.")
		return nil
	})
	if err != nil {
		return err
	}
	if closed > 0 {
		t.Pass("Switched to and closed %d window(s).", closed)
	}
	return nil
}

func (h *home) achievement(ctx context.Context, t *runner.T) error {
	if h.originalWindow != "" {
		if err := t.Driver().SwitchWindow(ctx, h.originalWindow); err != nil {
			return err
		}
		t.Info("Switched to original browser window.")
	}
	el, err := t.ScrollIntoView(ctx, achievementTitle)
	if err != nil {
		return err
	}
	if err := t.Settle(ctx); err != nil {
		return err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return err
	}
	t.Pass("Achievement text found: %s", text)
	return nil
}
