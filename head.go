package pubsite

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/a-h/templ"
)

type headKey struct{}

// headCollector receives the metadata a page body emits while rendering.
// The last emission wins, so nested components can refine the page title.
type headCollector struct {
	mu   sync.Mutex
	meta PageMeta
	set  bool
}

// EmitHead publishes page metadata to the document head. It is a no-op when
// the component is rendered outside of RenderDocument.
func EmitHead(ctx context.Context, meta PageMeta) {
	hc, ok := ctx.Value(headKey{}).(*headCollector)
	if !ok {
		return
	}
	hc.mu.Lock()
	hc.meta = meta
	hc.set = true
	hc.mu.Unlock()
}

// CollectHead renders body into w and returns the metadata it emitted.
func CollectHead(ctx context.Context, body templ.Component, w io.Writer) (PageMeta, bool, error) {
	hc := &headCollector{}
	if err := body.Render(context.WithValue(ctx, headKey{}, hc), w); err != nil {
		return PageMeta{}, false, err
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return hc.meta, hc.set, nil
}

// LayoutView is the input of the document layout: the head is whatever the
// body emitted, the body is already rendered markup.
type LayoutView struct {
	Site SiteInfo
	Head PageMeta
	Body templ.Component
}

// RenderDocument renders body first, then wraps it in the layout using the
// head metadata the body emitted, or fallback when it emitted none.
func RenderDocument(ctx context.Context, layout func(LayoutView) templ.Component, site SiteInfo, fallback PageMeta, body templ.Component, w io.Writer) error {
	var buf bytes.Buffer
	meta, ok, err := CollectHead(ctx, body, &buf)
	if err != nil {
		return err
	}
	if !ok {
		meta = fallback
	}
	if meta.Title == "" {
		meta.Title = site.Name
	}
	return layout(LayoutView{
		Site: site,
		Head: meta,
		Body: templ.Raw(buf.String()),
	}).Render(ctx, w)
}
