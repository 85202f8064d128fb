// Package catalog keeps the books of a library: it assigns ids, owns every
// Book record, and enforces the borrow/return rules.
package catalog

import (
	"library_catalog/pkg/models"
	"sync"

	"github.com/pkg/errors"
)

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Option configures a Library in New.
type Option func(*Library) error

// WithStore replaces the default in-memory map.
func WithStore(store Store) Option {
	return func(l *Library) error {
		if store == nil {
			return errors.New("nil store")
		}
		l.store = store
		return nil
	}
}

// WithBooks pre-seeds the Library. Ids are assigned in slice order and the
// incoming ID and Available fields are ignored.
func WithBooks(books []models.Book) Option {
	return func(l *Library) error {
		l.seed = append(l.seed, books...)
		return nil
	}
}

func WithLogger(logger Logger) Option {
	return func(l *Library) error {
		if logger != nil {
			l.logger = logger
		}
		return nil
	}
}

// Library is the owning collection of Books. nextID only grows, so an id is
// never handed out twice even after its book has been removed.
type Library struct {
	mu     sync.Mutex
	nextID uint64
	store  Store
	logger Logger
	seed   []models.Book
}

func New(opts ...Option) (*Library, error) {
	l := &Library{logger: nopLogger{}}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, errors.Wrap(err, "configure library")
		}
	}
	if l.store == nil {
		l.store = NewMemoryStore()
	}

	existing, err := l.store.All()
	if err != nil {
		return nil, errors.Wrap(err, "read store")
	}
	for _, b := range existing {
		if b.ID >= l.nextID {
			l.nextID = b.ID + 1
		}
	}

	seed := l.seed
	l.seed = nil
	for _, b := range seed {
		if _, err := l.Add(b.Title, b.Author, b.Year); err != nil {
			return nil, errors.Wrap(err, "seed library")
		}
	}
	return l, nil
}

// Add stores a new available book and returns its id.
func (l *Library) Add(title, author string, year uint32) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++

	book := models.NewBook(title, author, year)
	book.ID = id
	if err := l.store.Put(book); err != nil {
		return 0, errors.Wrapf(err, "add book %d", id)
	}
	l.logger.Printf("catalog: added book %d %q", id, title)
	return id, nil
}

// Remove deletes the book and reports whether it was present.
func (l *Library) Remove(id uint64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed, err := l.store.Delete(id)
	if err != nil {
		return false, errors.Wrapf(err, "remove book %d", id)
	}
	if removed {
		l.logger.Printf("catalog: removed book %d", id)
	}
	return removed, nil
}

func (l *Library) FindByID(id uint64) (models.Book, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	book, ok, err := l.store.Get(id)
	if err != nil {
		return models.Book{}, false, errors.Wrapf(err, "find book %d", id)
	}
	return book, ok, nil
}

// FindByTitle returns every book whose title matches exactly, ordered by id.
func (l *Library) FindByTitle(title string) ([]models.Book, error) {
	return l.filter(func(b models.Book) bool { return b.Title == title })
}

// FindByAuthor returns every book whose author matches exactly, ordered by id.
func (l *Library) FindByAuthor(author string) ([]models.Book, error) {
	return l.filter(func(b models.Book) bool { return b.Author == author })
}

func (l *Library) Count() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.store.Len()
	if err != nil {
		return 0, errors.Wrap(err, "count books")
	}
	return n, nil
}

// ListAll returns every live book ordered by id.
func (l *Library) ListAll() ([]models.Book, error) {
	return l.filter(func(models.Book) bool { return true })
}

// Borrow loans the book out. It fails with ErrBookUnavailable when the book
// is already borrowed and leaves it untouched.
func (l *Library) Borrow(id uint64) error {
	return l.transition(id, func(b *models.Book) error {
		if !b.Available {
			return ErrBookUnavailable
		}
		b.Borrow()
		return nil
	})
}

// Return puts the book back. It fails with ErrBookNotBorrowed when the book
// is already available and leaves it untouched.
func (l *Library) Return(id uint64) error {
	return l.transition(id, func(b *models.Book) error {
		if b.Available {
			return ErrBookNotBorrowed
		}
		b.Return()
		return nil
	})
}

func (l *Library) transition(id uint64, apply func(*models.Book) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	book, ok, err := l.store.Get(id)
	if err != nil {
		return errors.Wrapf(err, "load book %d", id)
	}
	if !ok {
		return errors.Wrapf(ErrBookNotFound, "book %d", id)
	}
	if err := apply(&book); err != nil {
		return errors.Wrapf(err, "book %d", id)
	}
	if err := l.store.Put(book); err != nil {
		return errors.Wrapf(err, "save book %d", id)
	}
	l.logger.Printf("catalog: book %d available=%t", id, book.Available)
	return nil
}

func (l *Library) filter(match func(models.Book) bool) ([]models.Book, error) {
	l.mu.Lock()
	all, err := l.store.All()
	l.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "list books")
	}

	books := make([]models.Book, 0, len(all))
	for _, b := range all {
		if match(b) {
			books = append(books, b)
		}
	}
	sortByID(books)
	return books, nil
}
