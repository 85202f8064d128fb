package catalog

import "library_catalog/pkg/models"

// DemoBooks is the fixed dataset used when the catalog starts pre-seeded.
func DemoBooks() []models.Book {
	return []models.Book{
		models.NewBook("Snømannen", "Jo Nesbø", 2007),
		models.NewBook("Kniv", "Jo Nesbø", 2019),
		models.NewBook("Sult", "Knut Hamsun", 1890),
		models.NewBook("Et dukkehjem", "Henrik Ibsen", 1879),
		models.NewBook("Peer Gynt", "Henrik Ibsen", 1867),
	}
}

// WithDemoBooks pre-seeds the Library with DemoBooks.
func WithDemoBooks() Option {
	return WithBooks(DemoBooks())
}
