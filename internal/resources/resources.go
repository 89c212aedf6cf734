package resources

import (
	"context"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/style"
)

// FontInstanceKey identifies a face at a size and resolution.
type FontInstanceKey struct {
	Family string
	// SizePx is rounded to 1/64 px so nearby sizes share an instance.
	SizePx float64
	DPI    float64
}

// NewFontInstanceKey normalizes a key.
func NewFontInstanceKey(family string, sizePx, dpi float64) FontInstanceKey {
	return FontInstanceKey{Family: strings.ToLower(family), SizePx: math.Round(sizePx*64) / 64, DPI: dpi}
}

// FontInstance is a face bound to a size.
type FontInstance struct {
	Key  FontInstanceKey
	Font FontImpl
}

// UpdateKind tags a ResourceUpdate.
type UpdateKind uint8

const (
	AddFont UpdateKind = iota
	DeleteFont
	AddFontInstance
	DeleteFontInstance
	AddImage
	DeleteImage
)

func (k UpdateKind) String() string {
	return [...]string{"AddFont", "DeleteFont", "AddFontInstance", "DeleteFontInstance", "AddImage", "DeleteImage"}[k]
}

// ResourceUpdate tells the renderer to add or remove a resource.
type ResourceUpdate struct {
	Kind     UpdateKind
	Family   string
	Instance FontInstanceKey
	Image    dom.ImageRef
}

type shapeKey struct {
	family string
	text   string
}

// RendererResources caches fonts, font instances, shaped strings and images.
// It is owned by a window and only mutated on the UI thread.
type RendererResources struct {
	loader      FontLoader
	logger      *zap.Logger
	parallelism int

	fonts     map[string]FontImpl
	missing   map[string]bool
	instances map[FontInstanceKey]*FontInstance
	shaped    map[shapeKey]ShapedBuffer
	images    map[string]dom.ImageRef
}

// NewRendererResources creates an empty cache. parallelism bounds concurrent
// font loads during GC (<= 0 means unbounded).
func NewRendererResources(loader FontLoader, logger *zap.Logger, parallelism int) *RendererResources {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loader == nil {
		loader = NewDefaultRegistry()
	}
	return &RendererResources{
		loader:      loader,
		logger:      logger.Named("resources"),
		parallelism: parallelism,
		fonts:       map[string]FontImpl{},
		missing:     map[string]bool{},
		instances:   map[FontInstanceKey]*FontInstance{},
		shaped:      map[shapeKey]ShapedBuffer{},
		images:      map[string]dom.ImageRef{},
	}
}

// Font returns the loaded face for a family. Families that are not loaded yet
// (or failed to load) resolve to ZeroFont; ok reports whether a real face was found.
func (r *RendererResources) Font(family string) (f FontImpl, ok bool) {
	if f, ok := r.fonts[strings.ToLower(family)]; ok {
		return f, true
	}
	return ZeroFont{}, false
}

// FamilyNames splits a font-family list into lower-cased names, dropping
// quotes and empty entries.
func FamilyNames(list string) []string {
	var out []string
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Instance returns a cached font instance, or nil.
func (r *RendererResources) Instance(key FontInstanceKey) *FontInstance { return r.instances[key] }

// Image returns a registered image.
func (r *RendererResources) Image(key string) (dom.ImageRef, bool) {
	img, ok := r.images[key]
	return img, ok
}

// ShapeCached shapes text with the face of one loaded family, memoizing the
// result. family is a single family name; entries are dropped whenever that
// family is loaded or evicted.
func (r *RendererResources) ShapeCached(family string, text []rune, shape func() ShapedBuffer) ShapedBuffer {
	k := shapeKey{family: strings.ToLower(family), text: string(text)}
	if b, ok := r.shaped[k]; ok {
		return b
	}
	b := shape()
	r.shaped[k] = b
	return b
}

// Stats reports cache sizes.
func (r *RendererResources) Stats() (fonts, instances, shaped, images int) {
	return len(r.fonts), len(r.instances), len(r.shaped), len(r.images)
}

// GarbageCollect scans every text and image node of the given DOMs, loads
// missing fonts (in parallel), registers missing instances and images, and
// drops everything no longer referenced. It returns the renderer updates.
// Load failures never abort the pass: the family falls back to ZeroFont.
func (r *RendererResources) GarbageCollect(ctx context.Context, doms []*style.StyledDom, dpi float64) []ResourceUpdate {
	neededInstances := map[FontInstanceKey]bool{}
	neededFamilies := map[string]bool{}
	neededImages := map[string]dom.ImageRef{}

	for _, sd := range doms {
		for i := range sd.NodeData {
			data := &sd.NodeData[i]
			id := schemas.NodeIDFromIndex(i)
			switch data.Type {
			case dom.NodeText, dom.NodeIcon:
				cs := sd.Computed(id)
				key := NewFontInstanceKey(cs.FontFamily(), cs.FontSize(), dpi)
				neededInstances[key] = true
				for _, fam := range FamilyNames(cs.FontFamily()) {
					neededFamilies[fam] = true
				}
			case dom.NodeImage:
				if data.Image != nil {
					neededImages[data.Image.Key] = *data.Image
				}
			}
		}
	}

	var updates []ResourceUpdate
	updates = append(updates, r.loadFamilies(ctx, neededFamilies)...)

	for key := range neededInstances {
		f, _ := r.Font(key.Family)
		if inst, ok := r.instances[key]; ok {
			inst.Font = f
			continue
		}
		r.instances[key] = &FontInstance{Key: key, Font: f}
		updates = append(updates, ResourceUpdate{Kind: AddFontInstance, Family: key.Family, Instance: key})
	}
	for key := range r.instances {
		if !neededInstances[key] {
			delete(r.instances, key)
			updates = append(updates, ResourceUpdate{Kind: DeleteFontInstance, Family: key.Family, Instance: key})
		}
	}
	for fam := range r.fonts {
		if !neededFamilies[fam] {
			delete(r.fonts, fam)
			r.dropShaped(fam)
			updates = append(updates, ResourceUpdate{Kind: DeleteFont, Family: fam})
		}
	}
	for fam := range r.missing {
		if !neededFamilies[fam] {
			delete(r.missing, fam)
		}
	}

	for key, img := range neededImages {
		if _, ok := r.images[key]; !ok {
			r.images[key] = img
			updates = append(updates, ResourceUpdate{Kind: AddImage, Image: img})
		}
	}
	for key, img := range r.images {
		if _, ok := neededImages[key]; !ok {
			delete(r.images, key)
			updates = append(updates, ResourceUpdate{Kind: DeleteImage, Image: img})
		}
	}

	slices.SortStableFunc(updates, func(a, b ResourceUpdate) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return strings.Compare(a.Family+a.Image.Key, b.Family+b.Image.Key)
	})
	if len(updates) > 0 {
		r.logger.Debug("resource gc", zap.Int("updates", len(updates)), zap.Int("fonts", len(r.fonts)),
			zap.Int("instances", len(r.instances)), zap.Int("images", len(r.images)))
	}
	return updates
}

// loadFamilies loads every needed family that is neither cached nor known to
// be missing.
func (r *RendererResources) loadFamilies(ctx context.Context, needed map[string]bool) []ResourceUpdate {
	var todo []string
	for fam := range needed {
		if _, ok := r.fonts[fam]; ok || r.missing[fam] {
			continue
		}
		todo = append(todo, fam)
	}
	if len(todo) == 0 {
		return nil
	}
	slices.Sort(todo)

	loaded := make([]FontImpl, len(todo))
	errs := make([]error, len(todo))
	g, _ := errgroup.WithContext(ctx)
	if r.parallelism > 0 {
		g.SetLimit(r.parallelism)
	}
	for i, fam := range todo {
		g.Go(func() error {
			loaded[i], errs[i] = r.loader.Load(fam)
			return nil
		})
	}
	_ = g.Wait()

	var updates []ResourceUpdate
	for i, fam := range todo {
		if errs[i] != nil || loaded[i] == nil {
			r.missing[fam] = true
			r.logger.Debug("font unavailable, using zero metrics", zap.String("family", fam), zap.Error(errs[i]))
			continue
		}
		r.fonts[fam] = loaded[i]
		r.dropShaped(fam)
		updates = append(updates, ResourceUpdate{Kind: AddFont, Family: fam})
	}
	return updates
}

func (r *RendererResources) dropShaped(family string) {
	for k := range r.shaped {
		if k.family == family {
			delete(r.shaped, k)
		}
	}
}
