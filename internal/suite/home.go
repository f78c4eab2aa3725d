// internal/suite/home.go
package suite

import (
	"context"

	"github.com/xkilldash9x/sitecheck/internal/runner"
)

// home carries state that later steps rely on, such as the window that was
// active before the Get Started popup.
type home struct {
	originalWindow string
}

// HomePage returns the home page suite in its declared order. Steps share
// browser state: scroll position, navigation history and the active window
// all carry over from one step to the next.
func HomePage() []runner.Step {
	h := &home{}
	return []runner.Step{
		hoverStep("TC01_HoverOnAboutUs", "About Us", menuAboutUs),
		hoverStep("TC02_HoverOnSolutions", "Solutions", menuSolutions),
		hoverStep("TC03_HoverOnPlatforms", "Platforms", menuPlatforms),
		hoverStep("TC04_HoverOnCareers", "Careers", menuCareers),
		{
			Name:        "TC05_VerifyLogoAndText",
			Description: "Verify the Recode logo and its adjacent hero text.",
			Locators:    []string{heroText, logo},
			Run:         verifyLogoAndText,
		},
		{
			Name:        "TC06_NavigateToDeployDigitalWorkers",
			Description: "Navigate to the *Deploy Digital Workers* section.",
			Locators:    []string{deployDigitalWorkers},
			Run: func(ctx context.Context, t *runner.T) error {
				el, err := t.WaitFor(ctx, deployDigitalWorkers)
				if err != nil {
					return err
				}
				t.Info("'Deploy Digital Workers' element located.")
				if err := el.ScrollIntoView(ctx); err != nil {
					return err
				}
				t.Pass("'Deploy Digital Workers' section scrolled into view.")
				return t.Settle(ctx)
			},
		},
		{
			Name:        "TC07_VerifyAboutUsSection",
			Description: "Verify the *About Us* section.",
			Locators:    []string{aboutUsSection},
			Run: func(ctx context.Context, t *runner.T) error {
				if err := t.ScrollBy(ctx, 1000); err != nil {
					return err
				}
				text, err := t.Text(ctx, aboutUsSection)
				if err != nil {
					return err
				}
				t.Info("About Us section found.")
				t.Pass("About Us: %s", text)
				return nil
			},
		},
		{
			Name:        "TC08_CheckOurStory",
			Description: "Click the *Our Story* tab to verify it is functional.",
			Locators:    []string{ourStoryButton},
			Run: func(ctx context.Context, t *runner.T) error {
				if err := t.Click(ctx, ourStoryButton); err != nil {
					return err
				}
				if err := t.Settle(ctx); err != nil {
					return err
				}
				t.Pass("Clicked on 'Our Story' button successfully.")
				return nil
			},
		},
		{
			Name:        "TC09_VerifyStoryAndValuesDetails",
			Description: "Verify the *Our Story* and *Our Values* sections display content.",
			Locators:    []string{storyText, ourValuesButton, valuesText},
			Run: func(ctx context.Context, t *runner.T) error {
				story, err := t.Text(ctx, storyText)
				if err != nil {
					return err
				}
				t.Pass("Story section text: %s", story)
				if err := t.Click(ctx, ourValuesButton); err != nil {
					return err
				}
				t.Info("'Our Values' button clicked.")
				values, err := t.Text(ctx, valuesText)
				if err != nil {
					return err
				}
				t.Pass("Values section text: %s", values)
				return nil
			},
		},
		{
			Name:        "TC10_CheckServicesHeading",
			Description: "Verify the Services section heading is displayed.",
			Locators:    []string{servicesHeading},
			Run: func(ctx context.Context, t *runner.T) error {
				if err := t.ScrollBy(ctx, 1000); err != nil {
					return err
				}
				t.Info("Scrolled down to locate the Services heading.")
				heading, err := t.Text(ctx, servicesHeading)
				if err != nil {
					return err
				}
				t.Pass("Service heading found: %s", heading)
				return t.Settle(ctx)
			},
		},
		{
			Name:        "TC11_NavigateToAILedAutomation",
			Description: "Open the AI-Led Automation link, check its heading and return home through the logo.",
			Locators:    []string{aiLedLink, aiLedHeading, logo},
			Run:         navigateToAILedAutomation,
		},
		serviceStep("TC12_VerifyGENAIService", "GEN AI", 1, 2000),
		serviceStep("TC13_VerifyAILedAutomationService", "AI-Led Automation", 2, 0),
		serviceStep("TC14_VerifyDataAnalyticsService", "Data Analytics", 3, 0),
		serviceStep("TC15_VerifyIntegrationServices", "Integration", 4, 0),
		serviceStep("TC16_VerifyDigitalCommerceSolutions", "Digital Commerce", 5, 0),
		serviceStep("TC17_VerifyQualityAssuranceServices", "Quality Assurance", 6, 0),
		serviceStep("TC18_VerifyDevOpsService", "DevOps", 7, 0),
		sliderStep("TC19_CheckSliderText", "Verify the hero text changes when the slider arrow is clicked."),
		sliderStep("TC20_CheckSecondSliderText", "Verify the second slider text after clicking the slider arrow again."),
		{
			Name:        "TC21_VerifyPlatformHeading",
			Description: "Verify that the *Platform* heading is visible.",
			Locators:    []string{platformHeading},
			Run:         scrollAndRead(platformHeading, "Platform heading found: %s"),
		},
		detailStep("TC22_VerifyAssessmentAndIntegration", "Assessment and Integration", assessmentTitle, assessmentDetails),
		detailStep("TC23_VerifyCustomizationAndDeployment", "Customization and Deployment", customizationTitle, customizationDetails),
		detailStep("TC24_VerifyAutomationAndOptimization", "Automation and Optimization", automationTitle, automationDetails),
		{
			Name:        "TC25_ClickGetStartedAndHandleWindows",
			Description: "Click *Get Started* and close any window it opens.",
			Locators:    []string{getStartedButton},
			Run:         h.getStarted,
		},
		{
			Name:        "TC26_VerifyAchievementText",
			Description: "Verify the *Achievement* section text.",
			Locators:    []string{achievementTitle},
			Run:         h.achievement,
		},
		{
			Name:        "TC27_VerifyBrandMessage",
			Description: "Verify the brand message *Reimagine, Reengineered, Recode* is visible.",
			Locators:    []string{brandMessage},
			Run:         scrollAndRead(brandMessage, "Brand message displayed: %s"),
		},
		{
			Name:        "TC28_ClickReadMoreAndVerifyCompany",
			Description: "Click *Read More* and verify the *Company* text.",
			Locators:    []string{readMoreButton, companyText},
			Run: func(ctx context.Context, t *runner.T) error {
				el, err := t.WaitFor(ctx, readMoreButton)
				if err != nil {
					return err
				}
				t.Info("Located 'Read More' button.")
				if err := el.Click(ctx); err != nil {
					return err
				}
				t.Info("'Read More' button clicked.")
				text, err := t.Text(ctx, companyText)
				if err != nil {
					return err
				}
				t.Pass("Company text displayed: %s", text)
				return nil
			},
		},
		{
			Name:        "TC29_NavigateBackToHome",
			Description: "Click *Home* to return to the home page.",
			Locators:    []string{homeButton},
			Run: func(ctx context.Context, t *runner.T) error {
				el, err := t.WaitFor(ctx, homeButton)
				if err != nil {
					return err
				}
				t.Info("Located 'Home' button.")
				if err := el.Click(ctx); err != nil {
					return err
				}
				t.Pass("'Home' button clicked successfully.")
				return t.Settle(ctx)
			},
		},
		{
			Name:        "TC30_VerifyCareersSection",
			Description: "Verify the *Careers at Recode* section is displayed.",
			Locators:    []string{careersSection},
			Run:         scrollAndRead(careersSection, "Careers section found: %s"),
		},
		{
			Name:        "TC31_ClickViewMoreAndVerifyText",
			Description: "Click *View More* and verify the recruitment text.",
			Locators:    []string{viewMoreButton, recruitHeading},
			Run: func(ctx context.Context, t *runner.T) error {
				el, err := t.WaitFor(ctx, viewMoreButton)
				if err != nil {
					return err
				}
				label, err := el.Text(ctx)
				if err != nil {
					return err
				}
				t.Info("Located 'View More' button with text: %s", label)
				if err := el.Click(ctx); err != nil {
					return err
				}
				t.Pass("'View More' button clicked successfully.")
				text, err := t.Text(ctx, recruitHeading)
				if err != nil {
					return err
				}
				t.Pass("Recruitment text verified: %s", text)
				return nil
			},
		},
		{
			Name:        "TC32_NavigateBackToHomeAndHandleWindows",
			Description: "Navigate back to *Home* and handle any extra browser windows.",
			Locators:    []string{homeLink},
			Run: func(ctx context.Context, t *runner.T) error {
				_, err := t.HandleNewWindows(ctx, func(ctx context.Context) error {
					if err := t.Click(ctx, homeLink); err != nil {
						return err
					}
					t.Info("'Home' link clicked.")
					return nil
				})
				return err
			},
		},
		{
			Name:        "TC33_VerifyLifeAtRecode",
			Description: "Verify the *Life @ Recode* section is visible.",
			Locators:    []string{lifeAtRecode},
			Run:         scrollAndRead(lifeAtRecode, "'Life @ Recode' section found with text: %s"),
		},
		{
			Name:        "TC34_VerifyAwardsSection",
			Description: "Verify the *Awards* heading and image are displayed.",
			Locators:    []string{awardsHeading, awardsImage},
			Run: func(ctx context.Context, t *runner.T) error {
				heading, err := t.Text(ctx, awardsHeading)
				if err != nil {
					return err
				}
				t.Pass("Awards heading found: %s", heading)
				visible, err := t.Visible(ctx, awardsImage)
				if err != nil {
					return err
				}
				if visible {
					t.Pass("Awards image is displayed correctly.")
				} else {
					t.Fail("Awards image is not visible.")
				}
				return nil
			},
		},
	}
}
