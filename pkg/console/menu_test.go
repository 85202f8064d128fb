package console

import (
	"bytes"
	"errors"
	"library_catalog/pkg/catalog"
	"library_catalog/pkg/models"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, c Catalog, input ...string) string {
	t.Helper()
	var out bytes.Buffer
	err := NewMenu(c, strings.NewReader(strings.Join(input, "\n")+"\n"), &out).Run()
	require.NoError(t, err)
	return out.String()
}

func newLibrary(t *testing.T) *catalog.Library {
	t.Helper()
	lib, err := catalog.New()
	require.NoError(t, err)
	return lib
}

func TestAddAndList(t *testing.T) {
	lib := newLibrary(t)

	out := run(t, lib,
		"1", "Snømannen", "Jo Nesbø", "2007",
		"1", "Kniv", "Jo Nesbø", "2019",
		"8",
		"0",
	)

	assert.Contains(t, out, "Added book with id 0.")
	assert.Contains(t, out, "Added book with id 1.")
	assert.Contains(t, out, divider)
	assert.Contains(t, out, `"Snømannen" by Jo Nesbø (2007), id 0, available`)
	assert.Contains(t, out, "2 book(s) in the library.")
	assert.True(t, strings.HasSuffix(out, "Bye.\n"))

	n, err := lib.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNumericInputIsRepromptedSilently(t *testing.T) {
	lib := newLibrary(t)

	out := run(t, lib, "1", "Sult", "Knut Hamsun", "eighteen ninety", "-5", "1890", "0")

	assert.Equal(t, 3, strings.Count(out, "Year: "))
	assert.NotContains(t, out, "Error")
	book, ok, err := lib.FindByID(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(1890), book.Year)
}

func TestBorrowReturnMessages(t *testing.T) {
	lib := newLibrary(t)
	_, err := lib.Add("Kniv", "Jo Nesbø", 2019)
	require.NoError(t, err)

	out := run(t, lib,
		"6", "0",
		"6", "0",
		"7", "0",
		"7", "0",
		"6", "9",
		"0",
	)

	assert.Contains(t, out, "Book 0 borrowed.")
	assert.Contains(t, out, "Book 0 is not available, it is already borrowed.")
	assert.Contains(t, out, "Book 0 returned.")
	assert.Contains(t, out, "Book 0 was not borrowed.")
	assert.Contains(t, out, "No book with id 9.")
}

func TestRemoveAndFind(t *testing.T) {
	lib := newLibrary(t)
	_, err := lib.Add("Snømannen", "Jo Nesbø", 2007)
	require.NoError(t, err)
	_, err = lib.Add("Kniv", "Jo Nesbø", 2019)
	require.NoError(t, err)

	out := run(t, lib,
		"2", "0",
		"2", "0",
		"5", "0",
		"5", "1",
		"4", "Jo Nesbø",
		"3", "Snømannen",
		"0",
	)

	assert.Contains(t, out, "Removed book 0.")
	assert.Contains(t, out, "No book with id 0.")
	assert.Contains(t, out, `"Kniv" by Jo Nesbø (2019), id 1, available`)
	assert.Contains(t, out, `No books titled "Snømannen".`)
	assert.NotContains(t, out, "id 0, available")
}

func TestUnknownChoice(t *testing.T) {
	out := run(t, newLibrary(t), "42", "0")
	assert.Contains(t, out, `Unknown choice "42".`)
}

func TestEndOfInputQuits(t *testing.T) {
	var out bytes.Buffer
	err := NewMenu(newLibrary(t), strings.NewReader("1\nHalf a book\n"), &out).Run()
	assert.NoError(t, err)
}

func TestEmptyLibraryListing(t *testing.T) {
	out := run(t, newLibrary(t), "8", "4", "Nobody", "0")
	assert.Contains(t, out, "The library is empty.")
	assert.Contains(t, out, "No books by Nobody.")
	assert.NotContains(t, out, divider)
}

type brokenCatalog struct {
	Catalog
}

func (brokenCatalog) ListAll() ([]models.Book, error) {
	return nil, errors.New("catalog offline")
}

func TestCatalogErrorsAreReported(t *testing.T) {
	out := run(t, brokenCatalog{}, "8", "0")
	assert.Contains(t, out, "Error: catalog offline")
	assert.True(t, strings.HasSuffix(out, "Bye.\n"))
}
