package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/booksmt/booksmt/internal/auth"
	"github.com/booksmt/booksmt/internal/catalog"
	"github.com/booksmt/booksmt/internal/covers"
	"github.com/booksmt/booksmt/internal/models"
	"github.com/booksmt/booksmt/internal/recommend"
	"github.com/booksmt/booksmt/internal/search"
	"github.com/booksmt/booksmt/internal/session"
)

// Handler contains the catalog, search and navigation handlers
type Handler struct {
	cat     *catalog.Catalog
	cov     *covers.Resolver
	rec     *recommend.Resolver
	ranker  *search.Ranker
	machine *session.Machine
	dir     *auth.Directory
}

// NewHandler creates a new handler instance
func NewHandler(cat *catalog.Catalog, cov *covers.Resolver, rec *recommend.Resolver, ranker *search.Ranker, machine *session.Machine, dir *auth.Directory) *Handler {
	return &Handler{
		cat:     cat,
		cov:     cov,
		rec:     rec,
		ranker:  ranker,
		machine: machine,
		dir:     dir,
	}
}

// bookView is a catalog row joined with its resolved cover
type bookView struct {
	Book  models.Book     `json:"book"`
	Cover covers.ImageRef `json:"cover"`
}

// buildViews filters ids to known books, resolves their covers and joins
// the rows. Unknown ids are silently dropped, never an error.
func (h *Handler) buildViews(c *gin.Context, ids []int) []bookView {
	known := h.cat.FilterKnown(ids)
	refs := h.cov.ResolveMany(c.Request.Context(), known)

	views := make([]bookView, 0, len(known))
	for _, id := range known {
		book, _ := h.cat.Get(id)
		views = append(views, bookView{Book: book, Cover: refs[id]})
	}
	return views
}

// HealthCheck returns service status
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "books": h.cat.Len()})
}

// MainPage renders the dashboard shelves: new arrivals, the top list and
// the user's curated recommendations.
func (h *Handler) MainPage(c *gin.Context) {
	s := auth.GetSession(c)

	var curated []int
	if entry, ok := h.dir.Lookup(s.Username); ok {
		curated = entry.Books
	}

	c.JSON(http.StatusOK, gin.H{
		"page":         s.Page,
		"new_arrivals": h.buildViews(c, h.rec.NamedList(recommend.ListNewArrivals)),
		"top":          h.buildViews(c, h.rec.TopList()),
		"recommended":  h.buildViews(c, curated),
		"basket_size":  s.BasketSize(),
	})
}

// Recommendations resolves the precomputed recommendation row for a
// numeric user id into concrete books with covers.
func (h *Handler) Recommendations(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User id must be numeric"})
		return
	}

	ids := h.rec.ForUser(userID)
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"books":   h.buildViews(c, ids),
	})
}

// Search runs the ranked catalog search. An empty query is rejected here;
// the ranker itself is never invoked without one.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}
	subject := c.Query("subject")

	topK := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			topK = n
		}
	}

	results := h.ranker.Search(query, subject, topK)
	ids := make([]int, len(results))
	scores := make(map[int]int, len(results))
	for i, res := range results {
		ids[i] = res.BookID
		scores[res.BookID] = res.Score
	}

	views := h.buildViews(c, ids)
	type hit struct {
		bookView
		Score int `json:"score"`
	}
	hits := make([]hit, len(views))
	for i, v := range views {
		hits[i] = hit{bookView: v, Score: scores[v.Book.ID]}
	}

	c.JSON(http.StatusOK, gin.H{"query": query, "results": hits})
}

// GetBook transitions to the detail page for a book and renders it with
// its cover and related titles. Unknown ids render the not-found view.
func (h *Handler) GetBook(c *gin.Context) {
	s := auth.GetSession(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"found": false, "page": s.Page})
		return
	}

	if err := h.machine.SelectBook(s, id); err != nil {
		if errors.Is(err, session.ErrBookNotFound) {
			c.JSON(http.StatusOK, gin.H{"found": false, "page": s.Page})
			return
		}
		h.transitionError(c, err)
		return
	}

	book, _ := h.cat.Get(id)
	similar := h.rec.SimilarTo(id, 5)

	c.JSON(http.StatusOK, gin.H{
		"found":   true,
		"page":    s.Page,
		"book":    book,
		"cover":   h.cov.Resolve(c.Request.Context(), id),
		"similar": h.buildViews(c, similar),
	})
}

// Back returns from the detail page to main.
func (h *Handler) Back(c *gin.Context) {
	s := auth.GetSession(c)
	if err := h.machine.Back(s); err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": s.Page})
}

// GoCheckout navigates from main to the checkout page.
func (h *Handler) GoCheckout(c *gin.Context) {
	s := auth.GetSession(c)
	if err := h.machine.GoCheckout(s); err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": s.Page, "basket": h.buildViews(c, s.Basket())})
}

// GoMain navigates from checkout back to main.
func (h *Handler) GoMain(c *gin.Context) {
	s := auth.GetSession(c)
	if err := h.machine.GoMain(s); err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": s.Page})
}

// GetBasket renders the basket contents with covers.
func (h *Handler) GetBasket(c *gin.Context) {
	s := auth.GetSession(c)
	c.JSON(http.StatusOK, gin.H{
		"page":   s.Page,
		"basket": h.buildViews(c, s.Basket()),
	})
}

// AddToBasket inserts a book into the basket; re-adding is a no-op.
func (h *Handler) AddToBasket(c *gin.Context) {
	s := auth.GetSession(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No book found"})
		return
	}
	if err := h.machine.AddToBasket(s, id); err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"basket": s.Basket()})
}

// RemoveFromBasket deletes a book from the basket; absent ids are a no-op.
func (h *Handler) RemoveFromBasket(c *gin.Context) {
	s := auth.GetSession(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"basket": s.Basket()})
		return
	}
	if err := h.machine.RemoveFromBasket(s, id); err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"basket": s.Basket()})
}

// ClearBasket empties the basket.
func (h *Handler) ClearBasket(c *gin.Context) {
	s := auth.GetSession(c)
	if err := h.machine.ClearBasket(s); err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"basket": s.Basket()})
}

// ConfirmCheckout completes the mock purchase. Confirming an empty basket
// is unavailable: the basket stays unchanged and guidance is returned.
func (h *Handler) ConfirmCheckout(c *gin.Context) {
	s := auth.GetSession(c)

	err := h.machine.ConfirmCheckout(s)
	if errors.Is(err, session.ErrEmptyBasket) {
		c.JSON(http.StatusOK, gin.H{
			"confirmed": false,
			"message":   "Your basket is empty. Add some books before checking out.",
			"page":      s.Page,
		})
		return
	}
	if err != nil {
		h.transitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"confirmed": true,
		"message":   "Order confirmed. Thank you for shopping with us!",
		"page":      s.Page,
	})
}

// GetSessionState returns a snapshot of the caller's session.
func (h *Handler) GetSessionState(c *gin.Context) {
	s := auth.GetSession(c)
	c.JSON(http.StatusOK, gin.H{
		"username":      s.Username,
		"page":          s.Page,
		"selected_book": s.SelectedBook,
		"basket":        s.Basket(),
	})
}

// transitionError maps state-machine errors to user-visible guidance
func (h *Handler) transitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in first"})
	case errors.Is(err, session.ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No book found"})
	case errors.Is(err, session.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "That action is not available from this page"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
