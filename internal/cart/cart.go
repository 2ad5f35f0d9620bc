// Package cart holds the shopper's line items and persists them per session.
package cart

import (
	"sync"

	"royal-kart/internal/model"

	"github.com/shopspring/decimal"
)

// Listener receives the cart state after a mutation.
type Listener func(view model.CartView)

// Cart is a set of lines keyed by product and variant. It is safe for
// concurrent use; listeners run after the mutation, outside the lock.
type Cart struct {
	mu        sync.Mutex
	lines     map[model.LineKey]*model.CartLine
	order     []model.LineKey
	listeners map[int]Listener
	nextID    int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{
		lines:     make(map[model.LineKey]*model.CartLine),
		listeners: make(map[int]Listener),
	}
}

// FromLines rebuilds a cart from persisted lines, merging any duplicates.
func FromLines(lines []model.CartLine) *Cart {
	c := New()
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		c.merge(l)
	}
	return c
}

// merge must be called with mu held.
func (c *Cart) merge(line model.CartLine) model.CartLine {
	key := line.Key()
	if existing, ok := c.lines[key]; ok {
		existing.Quantity += line.Quantity
		return *existing
	}
	l := line
	c.lines[key] = &l
	c.order = append(c.order, key)
	return l
}

// Add merges line into the cart. A zero or negative quantity counts as one.
// It returns the resulting line.
func (c *Cart) Add(line model.CartLine) model.CartLine {
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	c.mu.Lock()
	merged := c.merge(line)
	listeners, view := c.changedLocked()
	c.mu.Unlock()

	notify(listeners, view)
	return merged
}

// SetQuantity replaces the quantity of an existing line. It does nothing and
// returns false when n < 1 or the line is absent.
func (c *Cart) SetQuantity(key model.LineKey, n int) bool {
	if n < 1 {
		return false
	}

	c.mu.Lock()
	line, ok := c.lines[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	line.Quantity = n
	listeners, view := c.changedLocked()
	c.mu.Unlock()

	notify(listeners, view)
	return true
}

// Remove deletes the line, reporting whether it existed.
func (c *Cart) Remove(key model.LineKey) bool {
	c.mu.Lock()
	if _, ok := c.lines[key]; !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.lines, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	listeners, view := c.changedLocked()
	c.mu.Unlock()

	notify(listeners, view)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = make(map[model.LineKey]*model.CartLine)
	c.order = nil
	listeners, view := c.changedLocked()
	c.mu.Unlock()

	notify(listeners, view)
}

// Line returns a copy of the line stored under key.
func (c *Cart) Line(key model.LineKey) (model.CartLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lines[key]
	if !ok {
		return model.CartLine{}, false
	}
	return *l, true
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// ItemCount is the total number of units across all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemCountLocked()
}

// DiscountedTotal sums quantity × unit price × (1 − discount/100) over all lines.
func (c *Cart) DiscountedTotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

// Lines returns copies of the lines in insertion order.
func (c *Cart) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.linesLocked()
}

// View returns the lines with their derived totals.
func (c *Cart) View() model.CartView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (c *Cart) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Cart) itemCountLocked() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (c *Cart) linesLocked() []model.CartLine {
	out := make([]model.CartLine, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, *c.lines[k])
	}
	return out
}

func (c *Cart) viewLocked() model.CartView {
	return model.CartView{
		Lines:     c.linesLocked(),
		ItemCount: c.itemCountLocked(),
		Subtotal:  c.totalLocked(),
	}
}

func (c *Cart) changedLocked() ([]Listener, model.CartView) {
	if len(c.listeners) == 0 {
		return nil, model.CartView{}
	}
	listeners := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	return listeners, c.viewLocked()
}

func notify(listeners []Listener, view model.CartView) {
	for _, fn := range listeners {
		fn(view)
	}
}
