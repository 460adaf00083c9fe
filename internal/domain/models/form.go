package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// GenericProductsKey names the template every new form is copied from.
	GenericProductsKey = "generic_products"

	// DefaultInventory applies to products stored without an inventory value.
	DefaultInventory = 12

	// DefaultFormComment is shown on a form when none was configured.
	DefaultFormComment = "The bread comes sliced unless you specify otherwise here. You can also add additional notes here."
)

// ExtraOption describes a sub-selectable quantity offered for a product.
type ExtraOption struct {
	Name      string          `json:"name" bson:"name"`
	MinAmount int             `json:"minAmount" bson:"min_amount"`
	MaxAmount int             `json:"maxAmount" bson:"max_amount"`
	Price     decimal.Decimal `json:"price" bson:"price"`
}

// Product is a catalog entry of a form.
type Product struct {
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Extras      []ExtraOption `json:"extras,omitempty" bson:"extras,omitempty"`
	Inventory   *int          `json:"inventory,omitempty" bson:"inventory,omitempty"`
	SoldOut     bool          `json:"soldOut" bson:"sold_out"`
	Existent    *bool         `json:"existent,omitempty" bson:"existent,omitempty"`
	HasImage    bool          `json:"hasImage,omitempty" bson:"has_image,omitempty"`
	ImagePath   string        `json:"imagePath,omitempty" bson:"image_path,omitempty"`
}

// Capacity returns the inventory ceiling, defaulting missing values.
func (p Product) Capacity() int {
	if p.Inventory == nil {
		return DefaultInventory
	}
	return *p.Inventory
}

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	if p.Extras != nil {
		p.Extras = append([]ExtraOption(nil), p.Extras...)
	}
	if p.Inventory != nil {
		v := *p.Inventory
		p.Inventory = &v
	}
	if p.Existent != nil {
		v := *p.Existent
		p.Existent = &v
	}
	return p
}

// CloneProducts deep-copies a product list.
func CloneProducts(products []Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

// FormMetadata holds display toggles for a form.
type FormMetadata struct {
	Visible bool `json:"visible" bson:"visible"`
}

// Form is the product catalog of one date.
//
// Older stores keep a form as a bare product list; such forms decode with
// Legacy set and encode back to the same shape until they are rewritten.
type Form struct {
	Products []Product    `json:"products" bson:"products"`
	Metadata FormMetadata `json:"metadata" bson:"metadata"`
	Comment  string       `json:"comment,omitempty" bson:"comment,omitempty"`
	Legacy   bool         `json:"-" bson:"-"`
}

type formFields struct {
	Products []Product     `json:"products"`
	Metadata *FormMetadata `json:"metadata,omitempty"`
	Comment  string        `json:"comment,omitempty"`
}

// UnmarshalJSON accepts both the structured and the bare-list shape.
func (f *Form) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var products []Product
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return fmt.Errorf("decode legacy form: %w", err)
		}
		*f = Form{Products: products, Metadata: FormMetadata{Visible: true}, Legacy: true}
		return nil
	}

	var fields formFields
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("decode form: %w", err)
	}
	*f = Form{Products: fields.Products, Metadata: FormMetadata{Visible: true}, Comment: fields.Comment}
	if fields.Metadata != nil {
		f.Metadata = *fields.Metadata
	}
	return nil
}

// MarshalJSON writes legacy forms back as a bare product list.
func (f Form) MarshalJSON() ([]byte, error) {
	products := f.Products
	if products == nil {
		products = []Product{}
	}
	if f.Legacy {
		return json.Marshal(products)
	}
	return json.Marshal(formFields{Products: products, Metadata: &f.Metadata, Comment: f.Comment})
}

// CommentOrDefault returns the configured comment or the default text.
func (f Form) CommentOrDefault() string {
	if f.Comment == "" {
		return DefaultFormComment
	}
	return f.Comment
}

// Clone returns a deep copy of the form.
func (f Form) Clone() Form {
	if f.Products != nil {
		f.Products = CloneProducts(f.Products)
	}
	return f
}

// ProductIndex returns the position of the named product, or -1.
func (f Form) ProductIndex(name string) int {
	for i := range f.Products {
		if f.Products[i].Name == name {
			return i
		}
	}
	return -1
}

// FindProduct returns the product with the given name.
func (f Form) FindProduct(name string) (Product, bool) {
	if i := f.ProductIndex(name); i >= 0 {
		return f.Products[i], true
	}
	return Product{}, false
}

// FormBook is the full catalog document: the generic template plus one form per date.
type FormBook struct {
	Generic Form
	Forms   map[string]*Form
}

// NewFormBook returns an empty catalog with an empty template.
func NewFormBook() FormBook {
	return FormBook{Generic: Form{Products: []Product{}, Metadata: FormMetadata{Visible: true}}, Forms: map[string]*Form{}}
}

// Clone returns a deep copy of the catalog.
func (b FormBook) Clone() FormBook {
	out := FormBook{Generic: b.Generic.Clone(), Forms: make(map[string]*Form, len(b.Forms))}
	for name, form := range b.Forms {
		if form == nil {
			continue
		}
		c := form.Clone()
		out.Forms[name] = &c
	}
	return out
}

// Dates lists the form names in lexical order.
func (b FormBook) Dates() []string {
	dates := make([]string, 0, len(b.Forms))
	for name := range b.Forms {
		dates = append(dates, name)
	}
	sort.Strings(dates)
	return dates
}

// UnmarshalJSON decodes the single-object layout keyed by form name.
func (b *FormBook) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode forms: %w", err)
	}
	book := NewFormBook()
	for name, msg := range raw {
		var form Form
		if err := json.Unmarshal(msg, &form); err != nil {
			return fmt.Errorf("form %q: %w", name, err)
		}
		if name == GenericProductsKey {
			book.Generic = form
			continue
		}
		book.Forms[name] = &form
	}
	*b = book
	return nil
}

// MarshalJSON encodes the catalog back into the single-object layout.
func (b FormBook) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(b.Forms)+1)
	raw[GenericProductsKey] = b.Generic
	for name, form := range b.Forms {
		if form != nil {
			raw[name] = *form
		}
	}
	return json.Marshal(raw)
}
