// internal/browser/element.go
package browser

import (
	"context"
	"errors"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const (
	textJS = `function() { return (this.innerText || this.textContent || "").trim(); }`

	// An element counts as displayed when it is rendered, not hidden by style
	// and occupies some area on the page.
	visibleJS = `function() {
		const style = window.getComputedStyle(this);
		if (style.display === "none" || style.visibility === "hidden" || style.opacity === "0") {
			return false;
		}
		const rect = this.getBoundingClientRect();
		return rect.width > 0 && rect.height > 0;
	}`

	scrollIntoViewJS = `function() { this.scrollIntoView(true); return true; }`
)

// cdpElement is a node in the active window of a Session.
type cdpElement struct {
	s     *Session
	node  *cdp.Node
	query string
}

func (e *cdpElement) Query() string { return e.query }

func (e *cdpElement) call(fn string, res any) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()
		return chromedp.CallFunctionOn(fn, res, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(obj.ObjectID)
		}).Do(ctx)
	})
}

func (e *cdpElement) do(ctx context.Context, action string, a chromedp.Action) error {
	if err := e.s.run(ctx, e.s.cfg.ActionTimeout, a); err != nil {
		return &InteractionError{Action: action, Query: e.query, Err: err}
	}
	return nil
}

func (e *cdpElement) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.do(ctx, "read text", e.call(textJS, &text)); err != nil {
		return "", err
	}
	return text, nil
}

func (e *cdpElement) Visible(ctx context.Context) (bool, error) {
	var visible bool
	if err := e.do(ctx, "check visibility", e.call(visibleJS, &visible)); err != nil {
		return false, err
	}
	return visible, nil
}

func (e *cdpElement) Click(ctx context.Context) error {
	return e.do(ctx, "click", chromedp.MouseClickNode(e.node))
}

// Hover moves the pointer to the centre of the element's content box.
func (e *cdpElement) Hover(ctx context.Context) error {
	return e.do(ctx, "hover", chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithNodeID(e.node.NodeID).Do(ctx); err != nil {
			return err
		}
		box, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		x, y, ok := boxCenter(box)
		if !ok {
			return errors.New("element has no layout box")
		}
		return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
	}))
}

func (e *cdpElement) ScrollIntoView(ctx context.Context) error {
	var ok bool
	return e.do(ctx, "scroll into view", e.call(scrollIntoViewJS, &ok))
}

// boxCenter averages the four corners of the content quad.
func boxCenter(box *dom.BoxModel) (x, y float64, ok bool) {
	if box == nil || len(box.Content) < 8 {
		return 0, 0, false
	}
	q := box.Content
	x = (q[0] + q[2] + q[4] + q[6]) / 4
	y = (q[1] + q[3] + q[5] + q[7]) / 4
	return x, y, true
}
