package layout

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/style"
)

// naturalSize is the content size a replaced element has without CSS sizes.
func (p *pass) naturalSize(id NodeID) schemas.Size {
	data := p.sd.NodeData.Get(id)
	switch data.Type {
	case dom.NodeImage:
		if data.Image == nil || data.Image.Width <= 0 || data.Image.Height <= 0 {
			if p.missingImages == nil {
				p.missingImages = map[NodeID]bool{}
			}
			if !p.missingImages[id] {
				p.missingImages[id] = true
				p.debugf("images", "image on node %s has no decoded size, using 0x0", id)
			}
			return schemas.Size{}
		}
		return schemas.Size{Width: data.Image.Width, Height: data.Image.Height}
	case dom.NodeIcon:
		fs := p.sd.Computed(id).FontSize()
		return schemas.Size{Width: fs, Height: fs}
	case dom.NodeIframe:
		return schemas.Size{Width: defaultIframeWidth, Height: defaultIframeHeight}
	}
	return schemas.Size{}
}

// replacedSize resolves the used content size of a replaced element. A
// single explicit dimension scales the other by the natural aspect ratio.
func (p *pass) replacedSize(id NodeID, bm boxModel) schemas.Size {
	n := p.naturalSize(id)
	w, h := bm.width, bm.height
	switch {
	case math.IsNaN(w) && math.IsNaN(h):
		w, h = n.Width, n.Height
	case math.IsNaN(w):
		w = n.Width
		if n.Height > 0 {
			w = h * n.Width / n.Height
		}
	case math.IsNaN(h):
		h = n.Height
		if n.Width > 0 {
			h = w * n.Height / n.Width
		}
	}
	return schemas.Size{Width: bm.clampW(w), Height: bm.clampH(h)}
}

// layoutIframes runs the callback of every laid-out iframe and lays out the
// returned DOM inside the iframe's content box.
func (p *pass) layoutIframes() {
	seen := map[NodeID]bool{}
	ids := slices.DeleteFunc(slices.Clone(p.iframes), func(id NodeID) bool {
		if seen[id] {
			return true
		}
		seen[id] = true
		return false
	})
	for _, id := range ids {
		data := p.sd.NodeData.Get(id)
		if data.Iframe == nil || data.Iframe.Callback == nil {
			p.debugf("iframes", "iframe node %s has no callback", id)
			continue
		}
		bounds := p.rects.At(id).ContentBox()
		hidpi := p.opts.HiDPIFactor
		info := dom.IframeCallbackInfo{
			BoundsLogical:  bounds,
			BoundsPhysical: schemas.NewRect(bounds.X*hidpi, bounds.Y*hidpi, bounds.Width*hidpi, bounds.Height*hidpi),
			HiDPIFactor:    hidpi,
		}
		if p.opts.Scroll != nil {
			info.ScrollOffset = p.opts.Scroll.Offset(schemas.DomNodeID{Dom: p.sd.DomID, Node: id})
		}

		ret, err := invokeIframe(data.Iframe, info)
		if err != nil {
			p.debugf("iframes", "iframe callback on node %s failed: %v", id, err)
			p.logger.Warn("iframe callback failed, rendering empty document", zap.Stringer("node", id), zap.Error(err))
		}
		if ret.Dom == nil {
			ret.Dom = dom.Body()
		}

		*p.opts.domIDs++
		childID := *p.opts.domIDs
		sd := style.New(ret.Dom, ret.Stylesheet, style.WithDomID(childID), style.WithLogger(p.opts.Logger))
		child := Compute(sd, bounds, p.opts)
		parent := p.sd.DomID
		child.ParentDomID = &parent

		p.result.Iframes[id] = child
		p.result.IframeMapping[id] = childID
		p.result.iframeScroll[id] = ret
	}
}

// invokeIframe calls an iframe callback, turning a panic into an error so
// one broken iframe cannot take down the frame.
func invokeIframe(n *dom.IframeNode, info dom.IframeCallbackInfo) (ret dom.IframeCallbackReturn, err error) {
	defer func() {
		if r := recover(); r != nil {
			ret = dom.IframeCallbackReturn{}
			err = fmt.Errorf("iframe callback panicked: %v", r)
		}
	}()
	return n.Callback(n.State, info), nil
}
