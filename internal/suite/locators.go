// internal/suite/locators.go
package suite

import "fmt"

// XPath locators for the Recode Solutions home page.
const (
	menuAboutUs   = "//li[@id='menu-item-12159']//span[text()='About Us']"
	menuSolutions = "//li[ul/li[@id='menu-item-12266']]//span[text()='Solutions']"
	menuPlatforms = "(//span[@class='pxl-menu-item-text' and text()='Platforms'])[1]"
	menuCareers   = "//li[ul[@class='sub-menu'] and .//span[text()='Careers']]//span[text()='Careers']"

	heroText = "//sr7-txt[@id='SR7_1_1-2-1']"
	logo     = "(//img[contains(@src, 'recode-logo-final.png')])[1]"

	deployDigitalWorkers = "//span[text()='Deploy Digital Workers']"
	aboutUsSection       = "/html/body/div[1]/div[1]/div/div/div/main/article/div/div/section[2]/div/div/div/div"
	ourStoryButton       = "/html/body/div[1]/div/div/div/div/main/article/div/div/section[2]/div/div/div/section/div/div[3]/div/div/div/div/div/div[1]/span[1]"
	storyText            = "//section//h3/span"
	ourValuesButton      = "//span[normalize-space()='Our Values']"
	valuesText           = "//section//h3"

	servicesHeading = "//section[3]//h3"
	aiLedLink       = "//section[3]//a"
	aiLedHeading    = "//section//h3/span"

	sliderLeftArrow = "//sr7-arrow[contains(@class, 'sr7-leftarrow')]"
	sliderText1     = "//sr7-txt[text()='Empower Your Workforce with AI-Driven Digital Workers']"
	sliderText2     = "//sr7-txt[text()='Accelerate Digital Transformation with AI & Automation']"

	platformHeading = "(//div[@class='pxl-heading--inner']/h3)[5]"

	assessmentTitle      = "//div[@class='pxl-list']//div[normalize-space(text())='Assessment and Integration']"
	assessmentDetails    = "(//div[@class='pxl-item-desc1'])[1]"
	customizationTitle   = "//div[@class='pxl-item--text1' and normalize-space(.)='Customization and Deployment']"
	customizationDetails = "//div[@class='pxl-item-desc1' and contains(., 'Address specific industry challenges')]"
	automationTitle      = "//div[@class='pxl-item--text1' and contains(normalize-space(.), 'Automation and Optimization')]"
	automationDetails    = "//div[@class='pxl-item-desc1' and contains(., 'Utilize insights from KamerAI')]"

	getStartedButton = "//span[normalize-space(text())='Get Started']"
	achievementTitle = "(//h3[@class='pxl-item--title style-default highlight-default '])[5]"
	brandMessage     = "//span[normalize-space(text())='Reimagine, Reengineered, Recode']"
	readMoreButton   = "//span[normalize-space(text())='Read More']"
	companyText      = "(//span[normalize-space(text())='Company'])[4]"
	homeButton       = "(//span[normalize-space(text())='Home'])[1]"
	careersSection   = "//h3[contains(@class, 'pxl-item--title') and contains(., 'Careers at Recode')]"

	viewMoreButton  = "//span[normalize-space(text())='View More']"
	recruitHeading  = `//h2[contains(text(), "We're more than just a workplace")]`
	homeLink        = "//a[text()='Home']"
	lifeAtRecode    = "//a[text()='Life @ Recode']"
	awardsHeading   = "(//div[@data-id='570067b']//div[contains(@class, 'pxl-heading')])[2]"
	awardsImage     = "//img[contains(@src, 'Awards-1.png')]"
	serviceCardBase = "//div[@class='pxl-item--holder ']//h3"
)

// serviceCard locates the n-th service card heading, counting from 1.
func serviceCard(n int) string {
	return fmt.Sprintf("(%s)[%d]", serviceCardBase, n)
}
