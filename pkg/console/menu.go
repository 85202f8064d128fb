// Package console runs the numbered text menu over a Catalog.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"library_catalog/pkg/catalog"
	"library_catalog/pkg/models"
	"strconv"
	"strings"
)

// Catalog is what the menu drives. *catalog.Library and *client.Client both
// satisfy it.
type Catalog interface {
	Add(title, author string, year uint32) (uint64, error)
	Remove(id uint64) (bool, error)
	FindByID(id uint64) (models.Book, bool, error)
	FindByTitle(title string) ([]models.Book, error)
	FindByAuthor(author string) ([]models.Book, error)
	Borrow(id uint64) error
	Return(id uint64) error
	Count() (int, error)
	ListAll() ([]models.Book, error)
}

var divider = strings.Repeat("-", 40)

const menuText = `
0. Quit
1. Add a book
2. Remove a book
3. Find books by title
4. Find books by author
5. Find book by id
6. Borrow a book
7. Return a book
8. List all books`

// Menu reads choices line by line and prints results. It is not safe for
// concurrent use.
type Menu struct {
	catalog Catalog
	in      *bufio.Scanner
	out     io.Writer
}

func NewMenu(c Catalog, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		catalog: c,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// errQuit is returned by the readers when input runs out.
var errQuit = errors.New("quit")

// Run loops until the user picks 0 or input ends. Catalog failures are shown
// to the user and never end the loop.
func (m *Menu) Run() error {
	for {
		fmt.Fprintln(m.out, menuText)
		choice, err := m.readLine("Choice: ")
		if err != nil {
			return m.finish(err)
		}

		switch strings.TrimSpace(choice) {
		case "0":
			fmt.Fprintln(m.out, "Bye.")
			return nil
		case "1":
			err = m.add()
		case "2":
			err = m.remove()
		case "3":
			err = m.findByTitle()
		case "4":
			err = m.findByAuthor()
		case "5":
			err = m.findByID()
		case "6":
			err = m.borrow()
		case "7":
			err = m.giveBack()
		case "8":
			err = m.listAll()
		default:
			fmt.Fprintf(m.out, "Unknown choice %q.\n", strings.TrimSpace(choice))
		}
		if errors.Is(err, errQuit) {
			return m.finish(err)
		}
		if err != nil {
			fmt.Fprintf(m.out, "Error: %v\n", err)
		}
	}
}

func (m *Menu) finish(err error) error {
	if errors.Is(err, errQuit) {
		fmt.Fprintln(m.out)
		return nil
	}
	return err
}

func (m *Menu) add() error {
	title, err := m.readLine("Title: ")
	if err != nil {
		return err
	}
	author, err := m.readLine("Author: ")
	if err != nil {
		return err
	}
	year, err := m.readUint("Year: ", 32)
	if err != nil {
		return err
	}

	id, err := m.catalog.Add(title, author, uint32(year))
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Added book with id %d.\n", id)
	return nil
}

func (m *Menu) remove() error {
	id, err := m.readID()
	if err != nil {
		return err
	}
	removed, err := m.catalog.Remove(id)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(m.out, "Removed book %d.\n", id)
	} else {
		fmt.Fprintf(m.out, "No book with id %d.\n", id)
	}
	return nil
}

func (m *Menu) findByTitle() error {
	title, err := m.readLine("Title: ")
	if err != nil {
		return err
	}
	books, err := m.catalog.FindByTitle(title)
	if err != nil {
		return err
	}
	m.printBooks(books, fmt.Sprintf("No books titled %q.", title))
	return nil
}

func (m *Menu) findByAuthor() error {
	author, err := m.readLine("Author: ")
	if err != nil {
		return err
	}
	books, err := m.catalog.FindByAuthor(author)
	if err != nil {
		return err
	}
	m.printBooks(books, fmt.Sprintf("No books by %s.", author))
	return nil
}

func (m *Menu) findByID() error {
	id, err := m.readID()
	if err != nil {
		return err
	}
	book, ok, err := m.catalog.FindByID(id)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(m.out, "No book with id %d.\n", id)
		return nil
	}
	fmt.Fprintln(m.out, book.Describe())
	return nil
}

func (m *Menu) borrow() error {
	id, err := m.readID()
	if err != nil {
		return err
	}
	err = m.catalog.Borrow(id)
	switch {
	case err == nil:
		fmt.Fprintf(m.out, "Book %d borrowed.\n", id)
	case errors.Is(err, catalog.ErrBookNotFound):
		fmt.Fprintf(m.out, "No book with id %d.\n", id)
	case errors.Is(err, catalog.ErrBookUnavailable):
		fmt.Fprintf(m.out, "Book %d is not available, it is already borrowed.\n", id)
	default:
		return err
	}
	return nil
}

func (m *Menu) giveBack() error {
	id, err := m.readID()
	if err != nil {
		return err
	}
	err = m.catalog.Return(id)
	switch {
	case err == nil:
		fmt.Fprintf(m.out, "Book %d returned.\n", id)
	case errors.Is(err, catalog.ErrBookNotFound):
		fmt.Fprintf(m.out, "No book with id %d.\n", id)
	case errors.Is(err, catalog.ErrBookNotBorrowed):
		fmt.Fprintf(m.out, "Book %d was not borrowed.\n", id)
	default:
		return err
	}
	return nil
}

func (m *Menu) listAll() error {
	books, err := m.catalog.ListAll()
	if err != nil {
		return err
	}
	m.printBooks(books, "The library is empty.")

	n, err := m.catalog.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "%d book(s) in the library.\n", n)
	return nil
}

func (m *Menu) printBooks(books []models.Book, empty string) {
	if len(books) == 0 {
		fmt.Fprintln(m.out, empty)
		return
	}
	fmt.Fprintln(m.out, divider)
	for _, b := range books {
		fmt.Fprintln(m.out, b.Describe())
	}
	fmt.Fprintln(m.out, divider)
}

func (m *Menu) readLine(prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimRight(m.in.Text(), "\r"), nil
}

func (m *Menu) readID() (uint64, error) {
	return m.readUint("Id: ", 64)
}

// readUint prompts until the line parses as an unsigned integer that fits
// in bitSize bits.
func (m *Menu) readUint(prompt string, bitSize int) (uint64, error) {
	for {
		line, err := m.readLine(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseUint(strings.TrimSpace(line), 10, bitSize)
		if err == nil {
			return n, nil
		}
	}
}
