package database

import (
	"bytes"
	"errors"
	"library_catalog/pkg/catalog"
	"library_catalog/pkg/models"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := Open(name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestBookStorePutGet(t *testing.T) {
	store := NewBookStore(setupTestDB(t))

	book := models.Book{ID: 0, Title: "Sult", Author: "Knut Hamsun", Year: 1890, Available: true}
	require.NoError(t, store.Put(book))

	got, ok, err := store.Get(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, book, got)

	_, ok, err = store.Get(1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookStorePutUpdatesAvailability(t *testing.T) {
	store := NewBookStore(setupTestDB(t))

	book := models.NewBook("Kniv", "Jo Nesbø", 2019)
	book.ID = 3
	require.NoError(t, store.Put(book))

	book.Borrow()
	require.NoError(t, store.Put(book))

	got, ok, err := store.Get(3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, got.Available)

	n, err := store.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBookStoreDelete(t *testing.T) {
	store := NewBookStore(setupTestDB(t))
	require.NoError(t, store.Put(models.Book{ID: 5, Title: "Peer Gynt", Author: "Henrik Ibsen", Year: 1867, Available: true}))

	removed, err := store.Delete(5)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(5)
	require.NoError(t, err)
	assert.False(t, removed)

	books, err := store.All()
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestLibraryOnBookStore(t *testing.T) {
	lib, err := catalog.New(catalog.WithStore(NewBookStore(setupTestDB(t))))
	require.NoError(t, err)

	id, err := lib.Add("Snømannen", "Jo Nesbø", 2007)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	id, err = lib.Add("Kniv", "Jo Nesbø", 2019)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	removed, err := lib.Remove(0)
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok, err := lib.FindByID(0)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := lib.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	books, err := lib.FindByAuthor("Jo Nesbø")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, uint64(1), books[0].ID)

	require.NoError(t, lib.Borrow(1))
	assert.True(t, errors.Is(lib.Borrow(1), catalog.ErrBookUnavailable))
	require.NoError(t, lib.Return(1))
	assert.True(t, errors.Is(lib.Return(1), catalog.ErrBookNotBorrowed))

	id, err = lib.Add("Sult", "Knut Hamsun", 1890)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
}

func TestLibrariesShareNamedDatabase(t *testing.T) {
	db := setupTestDB(t)

	first, err := catalog.New(catalog.WithStore(NewBookStore(db)), catalog.WithDemoBooks())
	require.NoError(t, err)
	second, err := catalog.New(catalog.WithStore(NewBookStore(db)))
	require.NoError(t, err)

	id, err := second.Add("New", "Someone", 2020)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)

	n, err := first.Count()
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	book, ok, err := first.FindByID(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Snømannen", book.Title)
}

func TestStoreMissesAreNotLogged(t *testing.T) {
	var buf bytes.Buffer
	db, err := initDB("file:quiet_misses?mode=memory&cache=shared", newLogger(&buf), &models.BookRecord{})
	require.NoError(t, err)
	defer Close(db)
	store := NewBookStore(db)

	require.NoError(t, store.Put(models.NewBook("Sult", "Knut Hamsun", 1890)))
	_, ok, err := store.Get(42)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Empty(t, buf.String())
}

func TestSeparateNamesAreSeparateDatabases(t *testing.T) {
	a, err := Open("separate_a")
	require.NoError(t, err)
	defer Close(a)
	b, err := Open("separate_b")
	require.NoError(t, err)
	defer Close(b)

	require.NoError(t, NewBookStore(a).Put(models.NewBook("A", "X", 1)))

	n, err := NewBookStore(b).Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, Ping(db))
}
