// internal/browser/offline/element.go
package offline

import (
	"context"
	"errors"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/sitecheck/internal/browser"
)

var errStale = errors.New("stale element: the window has navigated since it was found")

type element struct {
	d     *Driver
	w     *window
	gen   int
	node  *html.Node
	query string
}

func (e *element) Query() string { return e.query }

// check verifies the element can still be used and records the action.
// The caller must hold e.d.mu.
func (e *element) check(ctx context.Context, action string) error {
	if err := ctx.Err(); err != nil {
		return &browser.InteractionError{Action: action, Query: e.query, Err: err}
	}
	if e.w.gen != e.gen || e.d.active != e.w {
		return &browser.InteractionError{Action: action, Query: e.query, Err: errStale}
	}
	if err, ok := e.d.broken[e.query]; ok {
		return &browser.InteractionError{Action: action, Query: e.query, Err: err}
	}
	return nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(ctx, "read text"); err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(htmlquery.InnerText(e.node)), " "), nil
}

// Visible reports false when the node or an ancestor is hidden by markup.
func (e *element) Visible(ctx context.Context) (bool, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(ctx, "check visibility"); err != nil {
		return false, err
	}
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hidden(n) {
			return false, nil
		}
	}
	return true, nil
}

func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func (e *element) Click(ctx context.Context) error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(ctx, "click"); err != nil {
		return err
	}
	e.d.record("click", e.query)
	if err := e.d.click(e.query); err != nil {
		return &browser.InteractionError{Action: "click", Query: e.query, Err: err}
	}
	return nil
}

func (e *element) Hover(ctx context.Context) error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(ctx, "hover"); err != nil {
		return err
	}
	e.d.record("hover", e.query)
	return nil
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	if err := e.check(ctx, "scroll into view"); err != nil {
		return err
	}
	e.d.record("scroll", e.query)
	return nil
}
