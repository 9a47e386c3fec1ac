// Package adminmenu contributes the attribute management entries to an admin
// navigation tree.
package adminmenu

import (
	"strings"
	"unicode"
)

const (
	ProductManagement   = "Product Management"
	AttributeManagement = "Attribute Management"
)

// Entity names passed to LinkGenerator.
const (
	EntityAttribute      = "Attribute"
	EntityAttributeValue = "AttributeValue"
	EntitySpuAttribute   = "SpuAttribute"
	EntitySkuAttribute   = "SkuAttribute"
)

type Item struct {
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	URI        string            `json:"uri,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Extras     map[string]string `json:"extras,omitempty"`
	Children   []*Item           `json:"children,omitempty"`
}

func NewItem(name string) *Item { return &Item{Name: name, Label: name} }

func (i *Item) Child(name string) *Item {
	for _, c := range i.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddChild returns the child called name, creating it when missing.
func (i *Item) AddChild(name string) *Item {
	if c := i.Child(name); c != nil {
		return c
	}
	c := NewItem(name)
	i.Children = append(i.Children, c)
	return c
}

func (i *Item) SetLabel(label string) *Item { i.Label = label; return i }

func (i *Item) SetURI(uri string) *Item { i.URI = uri; return i }

func (i *Item) SetAttribute(key, value string) *Item {
	if i.Attributes == nil {
		i.Attributes = map[string]string{}
	}
	i.Attributes[key] = value
	return i
}

func (i *Item) SetExtra(key, value string) *Item {
	if i.Extras == nil {
		i.Extras = map[string]string{}
	}
	i.Extras[key] = value
	return i
}

// LinkGenerator resolves the CRUD list page of an entity.
type LinkGenerator interface {
	CrudListPage(entity string) string
}

// PathLinks builds "<Base>/<kebab-entity>" links, e.g. /admin/crud/attribute-value.
type PathLinks struct {
	Base string
}

func (p PathLinks) CrudListPage(entity string) string {
	return strings.TrimRight(p.Base, "/") + "/" + kebab(entity)
}

func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

type Provider struct {
	Links LinkGenerator
}

type entry struct {
	entity string
	label  string
	icon   string
	help   string
}

var entries = []entry{
	{EntityAttribute, "Attributes", "fas fa-tag", "Manage product attributes: sales, non-sales and custom"},
	{EntityAttributeValue, "Attribute Values", "fas fa-list-ul", "Manage the selectable values of each attribute, as text, colour or image"},
	{EntitySpuAttribute, "SPU Attributes", "fas fa-cube", "Manage attribute values assigned to SPUs (standard product units)"},
	{EntitySkuAttribute, "SKU Attributes", "fas fa-cubes", "Manage sales attribute values assigned to SKUs (stock keeping units)"},
}

// Contribute adds the attribute management entries under root. Calling it again
// on the same tree changes nothing.
func (p *Provider) Contribute(root *Item) {
	product := root.AddChild(ProductManagement)
	attrs := product.AddChild(AttributeManagement).SetAttribute("icon", "fas fa-tags")
	for _, e := range entries {
		attrs.AddChild(e.label).
			SetURI(p.Links.CrudListPage(e.entity)).
			SetAttribute("icon", e.icon).
			SetExtra("help", e.help)
	}
}
