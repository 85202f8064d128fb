package httpapi

import (
	"errors"
	"library_catalog/pkg/catalog"
	"library_catalog/pkg/models"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"

	CodeBookNotFound    = "BOOK_NOT_FOUND"
	CodeBookUnavailable = "BOOK_UNAVAILABLE"
	CodeBookNotBorrowed = "BOOK_NOT_BORROWED"
)

// Server exposes one Library over HTTP. The Library serialises access itself,
// so handlers may run concurrently.
type Server struct {
	library *catalog.Library
	health  func() error
}

func New(library *catalog.Library) *Server {
	return &Server{library: library}
}

// WithHealthCheck adds a dependency probe to /manage/health.
func (s *Server) WithHealthCheck(check func() error) *Server {
	s.health = check
	return s
}

type createBookRequest struct {
	Title  *string `json:"title" binding:"required"`
	Author *string `json:"author" binding:"required"`
	Year   *uint32 `json:"year" binding:"required"`
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), requestID())

	r.GET("/api/v1/books", s.listBooks)
	r.GET("/api/v1/books/count", s.countBooks)
	r.POST("/api/v1/books", s.createBook)
	r.GET("/api/v1/books/:id", s.getBook)
	r.DELETE("/api/v1/books/:id", s.deleteBook)
	r.POST("/api/v1/books/:id/borrow", s.borrowBook)
	r.POST("/api/v1/books/:id/return", s.returnBook)
	r.GET("/manage/health", s.healthCheck)
	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) listBooks(c *gin.Context) {
	title, byTitle := c.GetQuery("title")
	author, byAuthor := c.GetQuery("author")

	var (
		books []models.Book
		err   error
	)
	switch {
	case byTitle:
		books, err = s.library.FindByTitle(title)
	case byAuthor:
		books, err = s.library.FindByAuthor(author)
	default:
		books, err = s.library.ListAll()
	}
	if err != nil {
		s.internalError(c, err)
		return
	}

	// title and author together narrow the title matches
	if byTitle && byAuthor {
		filtered := books[:0]
		for _, b := range books {
			if b.Author == author {
				filtered = append(filtered, b)
			}
		}
		books = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"totalElements": len(books),
		"items":         books,
	})
}

func (s *Server) countBooks(c *gin.Context) {
	n, err := s.library.Count()
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (s *Server) createBook(c *gin.Context) {
	var request createBookRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "validation error",
			"errors": map[string]string{
				"field": "request",
				"error": err.Error(),
			},
		})
		return
	}

	id, err := s.library.Add(*request.Title, *request.Author, *request.Year)
	if err != nil {
		s.internalError(c, err)
		return
	}
	book, ok, err := s.library.FindByID(id)
	if err != nil || !ok {
		// removed between the two calls
		c.JSON(http.StatusCreated, gin.H{"id": id})
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (s *Server) getBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	book, found, err := s.library.FindByID(id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found", "code": CodeBookNotFound})
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *Server) deleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	removed, err := s.library.Remove(id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found", "code": CodeBookNotFound})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) borrowBook(c *gin.Context) {
	s.transition(c, s.library.Borrow)
}

func (s *Server) returnBook(c *gin.Context) {
	s.transition(c, s.library.Return)
}

func (s *Server) transition(c *gin.Context, apply func(uint64) error) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	err := apply(id)
	switch {
	case errors.Is(err, catalog.ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found", "code": CodeBookNotFound})
		return
	case errors.Is(err, catalog.ErrBookUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "Book not available", "code": CodeBookUnavailable})
		return
	case errors.Is(err, catalog.ErrBookNotBorrowed):
		c.JSON(http.StatusConflict, gin.H{"error": "Book is not borrowed", "code": CodeBookNotBorrowed})
		return
	case err != nil:
		s.internalError(c, err)
		return
	}

	book, found, err := s.library.FindByID(id)
	if err != nil || !found {
		c.JSON(http.StatusOK, gin.H{"id": id})
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *Server) healthCheck(c *gin.Context) {
	if s.health != nil {
		if err := s.health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "DOWN",
				"details": "Catalog store check failed",
				"error":   err.Error(),
			})
			return
		}
	}
	n, err := s.library.Count()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Catalog unavailable",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"books":  n,
	})
}

func (s *Server) internalError(c *gin.Context, err error) {
	log.Printf("request %s: %v", c.GetString("requestID"), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func bookID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a non-negative integer"})
		return 0, false
	}
	return id, true
}
