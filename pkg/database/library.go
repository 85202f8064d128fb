package database

import (
	"library_catalog/pkg/catalog"
	"library_catalog/pkg/config"
	"log"

	"gorm.io/gorm"
)

// OpenLibrary builds the catalog described by cfg. In sqlite mode it also
// returns the database handle, which the caller must Close; in memory mode
// the handle is nil.
func OpenLibrary(cfg *config.Config, opts ...catalog.Option) (*catalog.Library, *gorm.DB, error) {
	if cfg.SeedDemo {
		opts = append(opts, catalog.WithDemoBooks())
	}

	var db *gorm.DB
	if cfg.Store == config.StoreSQLite {
		var err error
		db, err = Open(cfg.SQLiteName)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, catalog.WithStore(NewBookStore(db)))
	}

	library, err := catalog.New(opts...)
	if err != nil {
		if db != nil {
			Close(db)
		}
		return nil, nil, err
	}
	if cfg.SeedDemo {
		log.Println("Library test data seeded")
	}
	return library, db, nil
}
