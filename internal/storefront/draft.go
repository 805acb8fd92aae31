package storefront

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/talkincode/hexshop/internal/domain"
)

// MaxImages bounds the secondary image list.
const MaxImages = 5

// contentFields are edited by name but live in the nested content record.
var contentFields = map[string]bool{
	"material_contents": true,
	"notes":             true,
	"origin":            true,
	"shelf_life":        true,
}

// Draft is the working copy of a product while the edit form is open.
// Prices keep the raw input text until the draft is confirmed.
type Draft struct {
	ID          string
	Title       string
	Category    string
	Unit        string
	OriginPrice string
	Price       string
	Description string
	Enabled     bool
	ImageURL    string
	ImagesURL   []string
	Content     domain.ProductContent
}

// BlankDraft is the zeroed template used for create mode.
func BlankDraft() Draft {
	return Draft{ImagesURL: []string{""}}
}

// DraftFrom copies p into a new draft.
func DraftFrom(p domain.Product) Draft {
	d := Draft{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Unit:        p.Unit,
		OriginPrice: cast.ToString(p.OriginPrice),
		Price:       cast.ToString(p.Price),
		Description: p.Description,
		Enabled:     p.Enabled(),
		ImageURL:    p.ImageURL,
		Content:     p.Content,
	}
	for _, u := range p.ImagesURL {
		if len(d.ImagesURL) == MaxImages {
			break
		}
		d.ImagesURL = append(d.ImagesURL, u)
	}
	if len(d.ImagesURL) == 0 {
		d.ImagesURL = []string{""}
	}
	return d
}

func (d Draft) clone() Draft {
	d.ImagesURL = append([]string(nil), d.ImagesURL...)
	return d
}

// CanAddImage reports whether AddImage would append a slot.
func (d Draft) CanAddImage() bool {
	n := len(d.ImagesURL)
	if n >= MaxImages {
		return false
	}
	return n == 0 || d.ImagesURL[n-1] != ""
}

// CanRemoveImage reports whether RemoveImage would drop a slot.
func (d Draft) CanRemoveImage() bool {
	return len(d.ImagesURL) > 1
}

func (d *Draft) set(name string, value interface{}) error {
	if name == "is_enabled" {
		on, err := parseEnabled(value)
		if err != nil {
			return fmt.Errorf("%w: is_enabled: %v", ErrInvalidField, err)
		}
		d.Enabled = on
		return nil
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidField, name, err)
	}
	if contentFields[name] {
		switch name {
		case "material_contents":
			d.Content.MaterialContents = s
		case "notes":
			d.Content.Notes = s
		case "origin":
			d.Content.Origin = s
		case "shelf_life":
			d.Content.ShelfLife = s
		}
		return nil
	}
	switch name {
	case "title":
		d.Title = s
	case "category":
		d.Category = s
	case "unit":
		d.Unit = s
	case "origin_price":
		d.OriginPrice = s
	case "price":
		d.Price = s
	case "description":
		d.Description = s
	case "imageUrl":
		d.ImageURL = s
	default:
		return fmt.Errorf("%w: %s", ErrInvalidField, name)
	}
	return nil
}

func (d *Draft) setImage(i int, url string) error {
	if i < 0 || i >= len(d.ImagesURL) {
		return fmt.Errorf("%w: image index %d out of range", ErrInvalidField, i)
	}
	d.ImagesURL[i] = url
	return nil
}

func (d *Draft) addImage() bool {
	if !d.CanAddImage() {
		return false
	}
	d.ImagesURL = append(d.ImagesURL, "")
	return true
}

func (d *Draft) removeImage() bool {
	if !d.CanRemoveImage() {
		return false
	}
	d.ImagesURL = d.ImagesURL[:len(d.ImagesURL)-1]
	return true
}

// Product converts the draft into the record submitted to the API: prices
// become numbers, the enabled flag becomes 0/1 and blank trailing image
// slots are dropped.
func (d Draft) Product() (domain.Product, error) {
	originPrice, err := toNumber("origin_price", d.OriginPrice)
	if err != nil {
		return domain.Product{}, err
	}
	price, err := toNumber("price", d.Price)
	if err != nil {
		return domain.Product{}, err
	}
	images := append([]string(nil), d.ImagesURL...)
	for len(images) > 0 && strings.TrimSpace(images[len(images)-1]) == "" {
		images = images[:len(images)-1]
	}
	if images == nil {
		images = []string{}
	}
	p := domain.Product{
		ID:          d.ID,
		Title:       d.Title,
		Category:    d.Category,
		Unit:        d.Unit,
		OriginPrice: originPrice,
		Price:       price,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		ImagesURL:   images,
		Content:     d.Content,
	}
	if d.Enabled {
		p.IsEnabled = 1
	}
	return p, nil
}

func toNumber(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidField, field)
	}
	return f, nil
}

// parseEnabled accepts checkbox values ("on") besides what cast understands.
func parseEnabled(v interface{}) (bool, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes", "checked":
			return true, nil
		case "", "off", "no":
			return false, nil
		}
	}
	return cast.ToBoolE(v)
}
