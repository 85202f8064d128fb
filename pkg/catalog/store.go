package catalog

import (
	"library_catalog/pkg/models"
	"sort"
)

// Store holds the books of one Library keyed by id. Implementations need not
// be safe for concurrent use; Library serialises every call.
type Store interface {
	Put(book models.Book) error
	Get(id uint64) (models.Book, bool, error)
	Delete(id uint64) (bool, error)
	All() ([]models.Book, error)
	Len() (int, error)
}

// MemoryStore is the default Store, a plain map.
type MemoryStore struct {
	books map[uint64]models.Book
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[uint64]models.Book)}
}

func (s *MemoryStore) Put(book models.Book) error {
	s.books[book.ID] = book
	return nil
}

func (s *MemoryStore) Get(id uint64) (models.Book, bool, error) {
	book, ok := s.books[id]
	return book, ok, nil
}

func (s *MemoryStore) Delete(id uint64) (bool, error) {
	if _, ok := s.books[id]; !ok {
		return false, nil
	}
	delete(s.books, id)
	return true, nil
}

func (s *MemoryStore) All() ([]models.Book, error) {
	books := make([]models.Book, 0, len(s.books))
	for _, book := range s.books {
		books = append(books, book)
	}
	return books, nil
}

func (s *MemoryStore) Len() (int, error) {
	return len(s.books), nil
}

func sortByID(books []models.Book) {
	sort.Slice(books, func(i, j int) bool {
		return books[i].ID < books[j].ID
	})
}
