package database

import (
	"fmt"
	"io"
	"library_catalog/pkg/catalog"
	"library_catalog/pkg/models"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to a named in-memory SQLite database and migrates the books
// table. The data lives as long as the returned handle; nothing is written to
// disk.
func Open(name string) (*gorm.DB, error) {
	if name == "" {
		name = "catalog"
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	log.Printf("Opening in-memory catalog database: %s", name)
	return initDB(dsn, newLogger(os.Stderr), &models.BookRecord{})
}

// newLogger keeps gorm's warnings off stdout, which belongs to the console
// menu.
func newLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func initDB(dsn string, gormLogger logger.Interface, models ...interface{}) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get database instance")
	}
	// A shared-cache memory database is dropped when its last connection
	// closes, so keep one idle connection around for the handle's lifetime.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := db.AutoMigrate(models...); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	log.Println("Database connection established successfully")
	return db, nil
}

// Close releases the underlying connection, dropping the in-memory data.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping reports whether the database still answers.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "database connection failed")
	}
	if err := sqlDB.Ping(); err != nil {
		return errors.Wrap(err, "database ping failed")
	}
	return nil
}

// BookStore is a catalog.Store backed by gorm.
type BookStore struct {
	db *gorm.DB
}

var _ catalog.Store = (*BookStore)(nil)

func NewBookStore(db *gorm.DB) *BookStore {
	return &BookStore{db: db}
}

func (s *BookStore) Put(book models.Book) error {
	var record models.BookRecord
	result := s.db.Where("book_id = ?", book.ID).Limit(1).Find(&record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		record = models.NewBookRecord(book)
		return s.db.Create(&record).Error
	}

	record.Title = book.Title
	record.Author = book.Author
	record.Year = book.Year
	record.Available = book.Available
	return s.db.Save(&record).Error
}

func (s *BookStore) Get(id uint64) (models.Book, bool, error) {
	var record models.BookRecord
	result := s.db.Where("book_id = ?", id).Limit(1).Find(&record)
	if result.Error != nil {
		return models.Book{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Book{}, false, nil
	}
	return record.Book(), true, nil
}

func (s *BookStore) Delete(id uint64) (bool, error) {
	result := s.db.Where("book_id = ?", id).Delete(&models.BookRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *BookStore) All() ([]models.Book, error) {
	var records []models.BookRecord
	if err := s.db.Find(&records).Error; err != nil {
		return nil, err
	}
	books := make([]models.Book, len(records))
	for i, r := range records {
		books[i] = r.Book()
	}
	return books, nil
}

func (s *BookStore) Len() (int, error) {
	var n int64
	if err := s.db.Model(&models.BookRecord{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
