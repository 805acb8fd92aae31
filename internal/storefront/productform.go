package storefront

import (
	"context"
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/shopapi"
	"github.com/talkincode/hexshop/internal/store"
)

type FormMode string

const (
	ModeCreate FormMode = "create"
	ModeEdit   FormMode = "edit"
)

// FormState is the published snapshot of the product form.
type FormState struct {
	Open  bool
	Mode  FormMode
	Draft Draft
}

func (s FormState) clone() FormState {
	s.Draft = s.Draft.clone()
	return s
}

// RefreshFunc is fired once after a successful save.
type RefreshFunc func(ctx context.Context, sess shopapi.Session) error

// ProductForm owns the draft of the product being created or edited.
type ProductForm struct {
	api     AdminProductAPI
	onSaved RefreshFunc

	mu    sync.Mutex
	gen   uint64 // bumped on every Open/close
	state FormState
	snap  *store.Store[FormState]
}

func NewProductForm(api AdminProductAPI, onSaved RefreshFunc) *ProductForm {
	return &ProductForm{
		api:     api,
		onSaved: onSaved,
		snap:    store.New("product-form", FormState{}),
	}
}

// Snapshot returns a copy of the current form state.
func (f *ProductForm) Snapshot() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

func (f *ProductForm) Store() *store.Store[FormState] {
	return f.snap
}

// commit must be called with mu held; the returned func publishes after
// the lock is released.
func (f *ProductForm) commit() func() {
	ticket := f.snap.Begin()
	st := f.state.clone()
	return func() { f.snap.Publish(ticket, st) }
}

// Open resets the draft: a copy of template in edit mode, the zeroed
// template in create mode.
func (f *ProductForm) Open(mode FormMode, template domain.Product) {
	d := BlankDraft()
	if mode == ModeEdit {
		d = DraftFrom(template)
	}
	f.mu.Lock()
	f.gen++
	f.state = FormState{Open: true, Mode: mode, Draft: d}
	pub := f.commit()
	f.mu.Unlock()
	pub()
}

// Cancel discards the draft and closes the form.
func (f *ProductForm) Cancel() {
	f.mu.Lock()
	f.gen++
	f.state = FormState{}
	pub := f.commit()
	f.mu.Unlock()
	pub()
}

func (f *ProductForm) mutate(fn func(d *Draft) error) error {
	f.mu.Lock()
	if !f.state.Open {
		f.mu.Unlock()
		return ErrFormClosed
	}
	if err := fn(&f.state.Draft); err != nil {
		f.mu.Unlock()
		return err
	}
	pub := f.commit()
	f.mu.Unlock()
	pub()
	return nil
}

// SetField merges one field into the draft. Content fields go into the
// nested content record.
func (f *ProductForm) SetField(name string, value interface{}) error {
	return f.mutate(func(d *Draft) error { return d.set(name, value) })
}

type fieldPatch struct {
	Title            *string     `mapstructure:"title"`
	Category         *string     `mapstructure:"category"`
	Unit             *string     `mapstructure:"unit"`
	OriginPrice      *string     `mapstructure:"origin_price"`
	Price            *string     `mapstructure:"price"`
	Description      *string     `mapstructure:"description"`
	IsEnabled        interface{} `mapstructure:"is_enabled"`
	ImageURL         *string     `mapstructure:"imageUrl"`
	MaterialContents *string     `mapstructure:"material_contents"`
	Notes            *string     `mapstructure:"notes"`
	Origin           *string     `mapstructure:"origin"`
	ShelfLife        *string     `mapstructure:"shelf_life"`
}

func (p fieldPatch) each(fn func(name string, v interface{}) error) error {
	strs := []struct {
		name string
		v    *string
	}{
		{"title", p.Title},
		{"category", p.Category},
		{"unit", p.Unit},
		{"origin_price", p.OriginPrice},
		{"price", p.Price},
		{"description", p.Description},
		{"imageUrl", p.ImageURL},
		{"material_contents", p.MaterialContents},
		{"notes", p.Notes},
		{"origin", p.Origin},
		{"shelf_life", p.ShelfLife},
	}
	for _, s := range strs {
		if s.v == nil {
			continue
		}
		if err := fn(s.name, *s.v); err != nil {
			return err
		}
	}
	if p.IsEnabled != nil {
		return fn("is_enabled", p.IsEnabled)
	}
	return nil
}

// ApplyFields merges several fields at once. Unknown names fail the whole
// batch and leave the draft unchanged.
func (f *ProductForm) ApplyFields(fields map[string]interface{}) error {
	var patch fieldPatch
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &patch,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	return f.mutate(func(d *Draft) error {
		next := d.clone()
		if err := patch.each(next.set); err != nil {
			return err
		}
		*d = next
		return nil
	})
}

// SetImage replaces secondary image slot i.
func (f *ProductForm) SetImage(i int, url string) error {
	return f.mutate(func(d *Draft) error { return d.setImage(i, url) })
}

// AddImage appends an empty slot when there are fewer than MaxImages and
// the last slot is filled. It reports whether a slot was added.
func (f *ProductForm) AddImage() bool {
	added := false
	_ = f.mutate(func(d *Draft) error {
		added = d.addImage()
		return nil
	})
	return added
}

// RemoveImage drops the last slot, keeping at least one.
func (f *ProductForm) RemoveImage() bool {
	removed := false
	_ = f.mutate(func(d *Draft) error {
		removed = d.removeImage()
		return nil
	})
	return removed
}

// Confirm submits the draft: POST in create mode, PUT by id in edit mode.
// On success the form closes and the refresh callback fires once; a failing
// callback is reported as ErrReloadFailed. On a failed save the form stays
// open with the draft intact.
func (f *ProductForm) Confirm(ctx context.Context, sess shopapi.Session) error {
	f.mu.Lock()
	if !f.state.Open {
		f.mu.Unlock()
		return ErrFormClosed
	}
	gen, mode, draft := f.gen, f.state.Mode, f.state.Draft.clone()
	f.mu.Unlock()

	p, err := draft.Product()
	if err != nil {
		return err
	}
	if mode == ModeCreate {
		err = f.api.CreateProduct(ctx, sess, p)
	} else {
		err = f.api.UpdateProduct(ctx, sess, p)
	}
	if err != nil {
		zap.L().Warn("save product failed",
			zap.String("mode", string(mode)),
			zap.String("id", p.ID),
			zap.Error(err),
		)
		return fmt.Errorf("save product: %w", err)
	}
	zap.L().Info("product saved",
		zap.String("mode", string(mode)),
		zap.String("id", p.ID),
		zap.String("title", p.Title),
	)

	var pub func()
	f.mu.Lock()
	if f.gen == gen {
		f.gen++
		f.state = FormState{}
		pub = f.commit()
	}
	f.mu.Unlock()
	if pub != nil {
		pub()
	}

	if f.onSaved != nil {
		if err := f.onSaved(ctx, sess); err != nil {
			return fmt.Errorf("%w: %w", ErrReloadFailed, err)
		}
	}
	return nil
}

// Upload sends the file to the API and stores the returned URL as the
// primary image. A failed upload leaves the draft untouched.
func (f *ProductForm) Upload(ctx context.Context, sess shopapi.Session, filename string, data []byte) (string, error) {
	f.mu.Lock()
	if !f.state.Open {
		f.mu.Unlock()
		return "", ErrFormClosed
	}
	gen := f.gen
	f.mu.Unlock()

	url, err := f.api.UploadImage(ctx, sess, filename, data)
	if err != nil {
		zap.L().Warn("image upload failed", zap.String("filename", filename), zap.Error(err))
		return "", fmt.Errorf("upload image: %w", err)
	}

	var pub func()
	f.mu.Lock()
	if f.gen == gen && f.state.Open {
		f.state.Draft.ImageURL = url
		pub = f.commit()
	}
	f.mu.Unlock()
	if pub != nil {
		pub()
	}
	return url, nil
}
