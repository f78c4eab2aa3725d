// internal/browser/offline/driver.go
package offline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/sitecheck/internal/browser"
)

// Driver serves saved HTML pages through the browser.Driver interface.
// It evaluates XPath with htmlquery and simulates windows, navigation
// and popups. Nothing is rendered, so layout-dependent behavior is
// approximated from markup alone.
type Driver struct {
	mu sync.Mutex

	pages  map[string]*html.Node
	popups map[string]string
	links  map[string]string
	broken map[string]error
	// logs holds console output that clicking a query produces.
	logs    map[string][]browser.ConsoleMessage
	console []browser.ConsoleMessage

	screenshot []byte

	windows []*window
	active  *window
	nextID  int

	actions []Action
}

type window struct {
	handle  string
	history []string
	doc     *html.Node
	// gen changes on every navigation so old elements go stale.
	gen int
}

// Action is one interaction the driver observed.
type Action struct {
	Kind   string
	Query  string
	Window string
}

// Option configures a Driver.
type Option func(*Driver) error

// WithPage registers markup served when url is navigated to.
func WithPage(url, markup string) Option {
	return func(d *Driver) error {
		doc, err := htmlquery.Parse(strings.NewReader(markup))
		if err != nil {
			return fmt.Errorf("parse page %s: %w", url, err)
		}
		d.pages[url] = doc
		return nil
	}
}

// WithPopup makes a click on the first match of query open url in a new window.
func WithPopup(query, url string) Option {
	return func(d *Driver) error {
		d.popups[query] = url
		return nil
	}
}

// WithLink makes a click on the first match of query navigate the active window to url.
func WithLink(query, url string) Option {
	return func(d *Driver) error {
		d.links[query] = url
		return nil
	}
}

// WithBrokenElement makes every interaction with elements found by query fail with err.
func WithBrokenElement(query string, err error) Option {
	return func(d *Driver) error {
		d.broken[query] = err
		return nil
	}
}

// WithConsoleOnClick makes a click on query write a console message at level.
func WithConsoleOnClick(query, level, text string) Option {
	return func(d *Driver) error {
		d.logs[query] = append(d.logs[query], browser.ConsoleMessage{Level: level, Text: text, Source: "offline"})
		return nil
	}
}

// WithScreenshot sets the bytes returned by Screenshot.
// Without it Screenshot returns browser.ErrScreenshotUnsupported.
func WithScreenshot(png []byte) Option {
	return func(d *Driver) error {
		d.screenshot = append([]byte(nil), png...)
		return nil
	}
}

// New opens a single window on startURL, which must be registered through
// WithPage unless markup is non-empty, in which case it is served for startURL.
func New(startURL, markup string, opts ...Option) (*Driver, error) {
	d := &Driver{
		pages:  make(map[string]*html.Node),
		popups: make(map[string]string),
		links:  make(map[string]string),
		broken: make(map[string]error),
		logs:   make(map[string][]browser.ConsoleMessage),
	}
	if markup != "" {
		opts = append([]Option{WithPage(startURL, markup)}, opts...)
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	w, err := d.openWindow(startURL)
	if err != nil {
		return nil, err
	}
	d.active = w
	return d, nil
}

var (
	_ browser.Driver        = (*Driver)(nil)
	_ browser.ConsoleReader = (*Driver)(nil)
)

func (d *Driver) openWindow(url string) (*window, error) {
	doc, ok := d.pages[url]
	if !ok {
		return nil, fmt.Errorf("offline: no page registered for %s", url)
	}
	d.nextID++
	w := &window{
		handle:  fmt.Sprintf("W%d", d.nextID),
		history: []string{url},
		doc:     doc,
	}
	d.windows = append(d.windows, w)
	return w, nil
}

func (d *Driver) record(kind, query string) {
	handle := ""
	if d.active != nil {
		handle = d.active.handle
	}
	d.actions = append(d.actions, Action{Kind: kind, Query: query, Window: handle})
}

// Actions returns the interactions observed so far, in order.
func (d *Driver) Actions() []Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Action(nil), d.actions...)
}

var errNoActiveWindow = errors.New("offline: no active window")

func (d *Driver) activeWindow() (*window, error) {
	if d.active == nil {
		return nil, errNoActiveWindow
	}
	return d.active, nil
}

func (d *Driver) FindElement(ctx context.Context, query string) (browser.Element, error) {
	elems, err := d.FindElements(ctx, query)
	if err != nil {
		return nil, &browser.ElementNotFoundError{Query: query, Err: err}
	}
	if len(elems) == 0 {
		return nil, &browser.ElementNotFoundError{Query: query}
	}
	return elems[0], nil
}

func (d *Driver) FindElements(ctx context.Context, query string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	w, err := d.activeWindow()
	if err != nil {
		return nil, err
	}
	nodes, err := htmlquery.QueryAll(w.doc, query)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	elems := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		elems = append(elems, &element{d: d, w: w, gen: w.gen, node: n, query: query})
	}
	return elems, nil
}

// ExecuteScript records the script. Results are left untouched.
func (d *Driver) ExecuteScript(ctx context.Context, script string, res any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.activeWindow(); err != nil {
		return err
	}
	d.record("script", script)
	return nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.navigate(url)
}

func (d *Driver) navigate(url string) error {
	w, err := d.activeWindow()
	if err != nil {
		return err
	}
	doc, ok := d.pages[url]
	if !ok {
		return fmt.Errorf("offline: no page registered for %s", url)
	}
	w.doc = doc
	w.history = append(w.history, url)
	w.gen++
	d.record("navigate", url)
	return nil
}

func (d *Driver) Back(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	w, err := d.activeWindow()
	if err != nil {
		return err
	}
	if len(w.history) < 2 {
		return errors.New("offline: no previous page in history")
	}
	w.history = w.history[:len(w.history)-1]
	w.doc = d.pages[w.history[len(w.history)-1]]
	w.gen++
	d.record("back", "")
	return nil
}

func (d *Driver) CurrentWindow(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := d.activeWindow()
	if err != nil {
		return "", err
	}
	return w.handle, nil
}

func (d *Driver) Windows(ctx context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	handles := make([]string, 0, len(d.windows))
	for _, w := range d.windows {
		handles = append(handles, w.handle)
	}
	return handles, nil
}

func (d *Driver) SwitchWindow(ctx context.Context, handle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range d.windows {
		if w.handle == handle {
			d.active = w
			d.record("switch", handle)
			return nil
		}
	}
	return fmt.Errorf("offline: no window %q", handle)
}

func (d *Driver) CloseWindow(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, err := d.activeWindow()
	if err != nil {
		return err
	}
	if w == d.windows[0] {
		return errors.New("offline: refusing to close the primary window")
	}
	d.record("close", w.handle)
	for i, open := range d.windows {
		if open == w {
			d.windows = append(d.windows[:i], d.windows[i+1:]...)
			break
		}
	}
	d.active = nil
	return nil
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("screenshot", "")
	if d.screenshot == nil {
		return nil, browser.ErrScreenshotUnsupported
	}
	return append([]byte(nil), d.screenshot...), nil
}

// DrainConsole returns the console messages produced since the last call.
func (d *Driver) DrainConsole() []browser.ConsoleMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.console
	d.console = nil
	return out
}

// click applies any popup, link or console output registered for query.
func (d *Driver) click(query string) error {
	for _, m := range d.logs[query] {
		m.Time = time.Now()
		d.console = append(d.console, m)
	}
	if url, ok := d.popups[query]; ok {
		if _, err := d.openWindow(url); err != nil {
			return err
		}
		return nil
	}
	if url, ok := d.links[query]; ok {
		return d.navigate(url)
	}
	return nil
}
