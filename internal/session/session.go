package session

import (
	"errors"
	"sort"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrBookNotFound      = errors.New("no book found")
	ErrEmptyBasket       = errors.New("basket is empty")
	ErrInvalidTransition = errors.New("invalid transition")
)

// Page identifies the view a session is on.
type Page string

const (
	PageLogin    Page = "login"
	PageMain     Page = "main"
	PageDetail   Page = "detail"
	PageCheckout Page = "checkout"
)

// Session is the process-local state of one user interaction. It is only
// mutated through Machine transitions, which keep its invariants: a book is
// selected only on the detail page, the basket only holds catalog ids, and
// an unauthenticated session is always on the login page.
type Session struct {
	ID            string
	Authenticated bool
	Username      string
	Page          Page
	SelectedBook  *int
	LoggedOut     bool

	basket map[int]struct{}
}

func newSession(id string) *Session {
	return &Session{
		ID:     id,
		Page:   PageLogin,
		basket: make(map[int]struct{}),
	}
}

// Basket returns the basket contents in ascending id order.
func (s *Session) Basket() []int {
	ids := make([]int, 0, len(s.basket))
	for id := range s.basket {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// InBasket reports whether the book is in the basket.
func (s *Session) InBasket(bookID int) bool {
	_, ok := s.basket[bookID]
	return ok
}

// BasketSize returns the number of books in the basket.
func (s *Session) BasketSize() int {
	return len(s.basket)
}

// Catalog is the id-membership view of the catalog the machine validates
// selections and basket mutations against.
type Catalog interface {
	Has(id int) bool
}

// Machine applies the page/basket transition table to sessions. Every
// operation is total: failures are reported as typed errors and leave the
// session in a consistent state.
type Machine struct {
	cat Catalog
}

// NewMachine creates a state machine over the catalog.
func NewMachine(cat Catalog) *Machine {
	return &Machine{cat: cat}
}

// Login moves an authenticated user from login to main. Credential
// checking happens upstream; Login records its outcome.
func (m *Machine) Login(s *Session, username string) {
	s.Authenticated = true
	s.Username = username
	s.Page = PageMain
	s.LoggedOut = false
}

// Logout resets the session from any state: unauthenticated, login page,
// no selection, empty basket.
func (m *Machine) Logout(s *Session) {
	s.Authenticated = false
	s.Username = ""
	s.Page = PageLogin
	s.SelectedBook = nil
	s.basket = make(map[int]struct{})
	s.LoggedOut = true
}

// SelectBook moves to the detail page for a known book. An unknown id is
// reported as ErrBookNotFound and the session stays where it is, so the
// caller can render the not-found view.
func (m *Machine) SelectBook(s *Session, bookID int) error {
	if !s.Authenticated {
		return ErrNotAuthenticated
	}
	if !m.cat.Has(bookID) {
		return ErrBookNotFound
	}
	s.Page = PageDetail
	s.SelectedBook = &bookID
	return nil
}

// Back returns from the detail page to main, clearing the selection.
func (m *Machine) Back(s *Session) error {
	if !s.Authenticated {
		return ErrNotAuthenticated
	}
	if s.Page != PageDetail {
		return ErrInvalidTransition
	}
	s.Page = PageMain
	s.SelectedBook = nil
	return nil
}

// GoCheckout navigates from main to checkout. Basket contents persist.
func (m *Machine) GoCheckout(s *Session) error {
	if !s.Authenticated {
		return ErrNotAuthenticated
	}
	if s.Page != PageMain {
		return ErrInvalidTransition
	}
	s.Page = PageCheckout
	return nil
}

// GoMain navigates from checkout back to main. Basket contents persist.
func (m *Machine) GoMain(s *Session) error {
	if !s.Authenticated {
		return ErrNotAuthenticated
	}
	if s.Page != PageCheckout {
		return ErrInvalidTransition
	}
	s.Page = PageMain
	return nil
}

// AddToBasket inserts a known book into the basket. Adding a book already
// present is a no-op, not an error.
func (m *Machine) AddToBasket(s *Session, bookID int) error {
	if err := m.basketMutable(s); err != nil {
		return err
	}
	if !m.cat.Has(bookID) {
		return ErrBookNotFound
	}
	s.basket[bookID] = struct{}{}
	return nil
}

// RemoveFromBasket deletes a book from the basket; absent ids are a no-op.
func (m *Machine) RemoveFromBasket(s *Session, bookID int) error {
	if err := m.basketMutable(s); err != nil {
		return err
	}
	delete(s.basket, bookID)
	return nil
}

// ClearBasket empties the basket unconditionally.
func (m *Machine) ClearBasket(s *Session) error {
	if err := m.basketMutable(s); err != nil {
		return err
	}
	s.basket = make(map[int]struct{})
	return nil
}

// ConfirmCheckout completes the mock purchase: a non-empty basket is
// emptied and the session stays on the confirmation view. Confirming an
// empty basket is unavailable and leaves everything unchanged.
func (m *Machine) ConfirmCheckout(s *Session) error {
	if !s.Authenticated {
		return ErrNotAuthenticated
	}
	if s.Page != PageCheckout {
		return ErrInvalidTransition
	}
	if len(s.basket) == 0 {
		return ErrEmptyBasket
	}
	s.basket = make(map[int]struct{})
	return nil
}

func (m *Machine) basketMutable(s *Session) error {
	if !s.Authenticated {
		return ErrNotAuthenticated
	}
	switch s.Page {
	case PageMain, PageDetail, PageCheckout:
		return nil
	default:
		return ErrInvalidTransition
	}
}
