package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/phenrril/productattr/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

type AttributeUC struct {
	Attributes domain.AttributeRepo
}

type ListParams struct {
	Type   string
	Status string
	Search string
	Page   int
	Limit  int
}

// List returns the filtered attributes, ascending by sort order. Pagination is
// applied after the full result is loaded, and reported only when the caller
// asked for a later page or the page is smaller than the result.
func (uc *AttributeUC) List(ctx context.Context, p ListParams) (*AttributeList, error) {
	if p.Status == "" {
		p.Status = string(domain.StatusActive)
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	all, err := uc.Attributes.Find(ctx, domain.AttributeQuery{
		Type:   domain.AttributeType(p.Type),
		Status: domain.AttributeStatus(p.Status),
		Search: p.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}

	total := len(all)
	// bounds are checked before multiplying so huge page or limit values
	// yield an empty page instead of overflowing
	offset := total
	if p.Page-1 <= total/p.Limit {
		offset = (p.Page - 1) * p.Limit
	}
	end := offset + min(p.Limit, total-offset)
	page := all[offset:end]

	out := &AttributeList{Data: make([]AttributeView, 0, len(page))}
	for i := range page {
		out.Data = append(out.Data, NewAttributeView(&page[i]))
	}
	if p.Page > 1 || p.Limit < total {
		out.Pagination = &Pagination{
			CurrentPage: p.Page,
			PerPage:     p.Limit,
			Total:       total,
			LastPage:    lastPage(total, p.Limit),
		}
	}
	return out, nil
}

func lastPage(total, limit int) int {
	n := total / limit
	if total%limit != 0 {
		n++
	}
	return n
}

// Search matches code or name regardless of status. An empty query returns an
// empty list without reading the store.
func (uc *AttributeUC) Search(ctx context.Context, query, typ string) ([]AttributeBrief, error) {
	out := []AttributeBrief{}
	if query == "" {
		return out, nil
	}
	list, err := uc.Attributes.Find(ctx, domain.AttributeQuery{Type: domain.AttributeType(typ), Search: query})
	if err != nil {
		return nil, fmt.Errorf("search attributes: %w", err)
	}
	for i := range list {
		out = append(out, NewAttributeBrief(&list[i]))
	}
	return out, nil
}

func (uc *AttributeUC) Show(ctx context.Context, id string) (*AttributeDetail, error) {
	a, err := uc.Attributes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := NewAttributeDetail(a)
	return &d, nil
}

// Values returns the active values of one attribute, highest sort order first.
func (uc *AttributeUC) Values(ctx context.Context, id string) ([]AttributeValueView, error) {
	a, err := uc.Attributes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	active := a.ActiveValuesByPriority()
	out := make([]AttributeValueView, 0, len(active))
	for i := range active {
		out = append(out, NewAttributeValueView(&active[i]))
	}
	return out, nil
}

// Create stores a new attribute with its values. Missing statuses default to active.
func (uc *AttributeUC) Create(ctx context.Context, a *domain.Attribute) error {
	a.Code = strings.TrimSpace(a.Code)
	a.Name = strings.TrimSpace(a.Name)
	if a.Status == "" {
		a.Status = domain.StatusActive
	}
	for i := range a.Values {
		if a.Values[i].Status == "" {
			a.Values[i].Status = domain.StatusActive
		}
	}
	if err := validateAttribute(a); err != nil {
		return err
	}
	if err := uc.Attributes.Save(ctx, a); err != nil {
		return fmt.Errorf("save attribute %q: %w", a.Code, err)
	}
	return nil
}

func (uc *AttributeUC) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: attribute id", domain.ErrInvalid)
	}
	return uc.Attributes.Delete(ctx, id)
}

// RemoveValue drops one value from its attribute; the store deletes the orphan.
func (uc *AttributeUC) RemoveValue(ctx context.Context, attributeID, valueID string) error {
	a, err := uc.Attributes.FindByID(ctx, attributeID)
	if err != nil {
		return err
	}
	if !a.RemoveValue(valueID) {
		return fmt.Errorf("attribute value %s: %w", valueID, domain.ErrNotFound)
	}
	return uc.Attributes.Save(ctx, a)
}

// Catalog loads every attribute with its values, in list order.
func (uc *AttributeUC) Catalog(ctx context.Context) ([]domain.Attribute, error) {
	list, err := uc.Attributes.Find(ctx, domain.AttributeQuery{WithValues: true})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return list, nil
}

func validateAttribute(a *domain.Attribute) error {
	switch {
	case a.Code == "":
		return fmt.Errorf("%w: empty code", domain.ErrInvalid)
	case a.Name == "":
		return fmt.Errorf("%w: empty name", domain.ErrInvalid)
	case !a.Type.Valid():
		return fmt.Errorf("%w: type %q", domain.ErrInvalid, a.Type)
	case !a.ValueType.Valid():
		return fmt.Errorf("%w: valueType %q", domain.ErrInvalid, a.ValueType)
	case !a.InputType.Valid():
		return fmt.Errorf("%w: inputType %q", domain.ErrInvalid, a.InputType)
	case !a.Status.Valid():
		return fmt.Errorf("%w: status %q", domain.ErrInvalid, a.Status)
	}
	for _, v := range a.Values {
		if !v.Status.Valid() {
			return fmt.Errorf("%w: value status %q", domain.ErrInvalid, v.Status)
		}
	}
	return nil
}
