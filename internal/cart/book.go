package cart

import "sync"

// Book hands out one cart per user session.  Carts are created lazily on
// first use and dropped when a session ends or a checkout clears them
// out; they hold no persistent state.
type Book struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewBook returns an empty cart book.
func NewBook() *Book {
	return &Book{carts: make(map[string]*Cart)}
}

// For returns the user's cart, creating it on first use.
func (b *Book) For(userID string) *Cart {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.carts[userID]
	if !ok {
		c = NewCart()
		b.carts[userID] = c
	}
	return c
}

// Drop forgets the user's cart, e.g. on logout.
func (b *Book) Drop(userID string) {
	b.mu.Lock()
	delete(b.carts, userID)
	b.mu.Unlock()
}
