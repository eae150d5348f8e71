package services

import (
	"fmt"
	"strings"
)

// UnresolvedItem records why a requested menu item was left out.
type UnresolvedItem struct {
	MenuItemID string
	Reason     error
}

// ResolutionPolicy decides whether an order may go ahead when some requested
// items could not be resolved against the catalog.
type ResolutionPolicy interface {
	Name() string
	Accept(requested int, unresolved []UnresolvedItem) error
}

// PartialResolution accepts any subset; an order with nothing resolved still
// fails later on its zero total.
type PartialResolution struct{}

func (PartialResolution) Name() string { return "partial" }

func (PartialResolution) Accept(int, []UnresolvedItem) error { return nil }

// StrictResolution rejects the order as soon as one item is unresolved.
type StrictResolution struct{}

func (StrictResolution) Name() string { return "strict" }

func (StrictResolution) Accept(requested int, unresolved []UnresolvedItem) error {
	if len(unresolved) == 0 {
		return nil
	}
	ids := make([]string, 0, len(unresolved))
	for _, u := range unresolved {
		ids = append(ids, u.MenuItemID)
	}
	return fmt.Errorf("%w: %d of %d (%s)", ErrUnresolvedItems, len(unresolved), requested, strings.Join(ids, ", "))
}

// PolicyByName maps a configuration value to a policy.
func PolicyByName(name string) (ResolutionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "partial":
		return PartialResolution{}, nil
	case "strict":
		return StrictResolution{}, nil
	default:
		return nil, fmt.Errorf("unknown resolution policy %q", name)
	}
}
