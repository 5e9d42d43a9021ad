package jsonstore

import (
	"context"
	"path/filepath"

	"github.com/qualclamps/storefront/internal/order"
)

// Orders implements order.Repository over orders.json.
type Orders struct {
	s *Store
}

var _ order.Repository = (*Orders)(nil)

func (o *Orders) path() string {
	return filepath.Join(o.s.dir, ordersFile)
}

// Append persists a new order snapshot.
func (o *Orders) Append(ctx context.Context, ord order.Order) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	var all []order.Order
	if _, err := o.s.readJSON(o.path(), &all); err != nil {
		return err
	}
	all = append(all, ord)
	return o.s.writeJSON(o.path(), all)
}

// List returns every stored order, oldest first.
func (o *Orders) List(ctx context.Context) ([]order.Order, error) {
	var all []order.Order
	if _, err := o.s.readJSON(o.path(), &all); err != nil {
		return nil, err
	}
	return all, nil
}

// Get returns the order with the given id.
func (o *Orders) Get(ctx context.Context, id string) (order.Order, error) {
	all, err := o.List(ctx)
	if err != nil {
		return order.Order{}, err
	}
	for _, ord := range all {
		if ord.ID == id {
			return ord, nil
		}
	}
	return order.Order{}, order.ErrNotFound
}

// Update replaces the stored order sharing the snapshot's id.
func (o *Orders) Update(ctx context.Context, ord order.Order) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	var all []order.Order
	if _, err := o.s.readJSON(o.path(), &all); err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == ord.ID {
			all[i] = ord
			return o.s.writeJSON(o.path(), all)
		}
	}
	return order.ErrNotFound
}
