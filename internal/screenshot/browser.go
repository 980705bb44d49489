package screenshot

import (
	"fmt"
	"log"

	"github.com/playwright-community/playwright-go"
)

const (
	viewportWidth  = 1280
	viewportHeight = 800
	gotoTimeoutMs  = 30000
)

func takeScreenshot(url string) ([]byte, error) {
	pw, browser, err := createPlaywrightBrowser()
	if err != nil {
		return nil, err
	}
	defer pw.Stop()
	defer browser.Close()

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: viewportWidth, Height: viewportHeight},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create context: %w", err)
	}
	defer context.Close()

	page, err := context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	if _, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(gotoTimeoutMs),
	}); err != nil {
		return nil, fmt.Errorf("could not navigate to page: %w", err)
	}

	screenshot, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("could not take screenshot: %w", err)
	}

	return screenshot, nil
}

func createPlaywrightBrowser() (*playwright.Playwright, playwright.Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless:        playwright.Bool(true),
		Args:            []string{"--disable-gpu", "--no-sandbox", "--no-zygote"},
		ChromiumSandbox: playwright.Bool(false),
	})
	if err != nil {
		pw.Stop()
		return nil, nil, fmt.Errorf("could not launch browser: %w", err)
	}

	return pw, browser, nil
}

func installPlaywrightBrowsers() error {
	log.Println("Installing Playwright browsers...")
	err := playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
	if err != nil {
		return fmt.Errorf("could not install browsers: %w", err)
	}
	log.Println("Playwright browsers installed successfully")
	return nil
}
