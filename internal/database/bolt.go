// Package database provides data persistence using BoltDB. It stores the
// locally triggered downloads that back the "already downloaded" marker.
package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	dbFileMode = 0600
	dbDirMode  = 0755

	defaultDBFile = "data.db"
)

var downloadsBucket = []byte("downloads")

// Download is one recorded download selection, keyed by info hash.
type Download struct {
	Hash    string    `json:"hash"`
	Title   string    `json:"title"`
	Magnet  string    `json:"magnet"`
	AddedAt time.Time `json:"added_at"`
}

// Database defines the interface for data persistence operations.
type Database interface {
	// StoreDownload records a triggered download
	StoreDownload(download *Download) error
	// GetDownloads retrieves all recorded downloads
	GetDownloads() ([]Download, error)
	// DownloadedHashes returns the set of recorded info hashes
	DownloadedHashes() (map[string]bool, error)
	// DeleteDownload removes a download record by hash
	DeleteDownload(hash string) error
	// Close closes the database connection
	Close() error
}

// BoltDB implements the Database interface using BoltDB.
type BoltDB struct {
	db *bolt.DB
}

// NewBolt creates a new BoltDB database instance.
// If dbPath is empty, uses the default database file in current directory.
func NewBolt(dbPath string) (*BoltDB, error) {
	if dbPath == "" {
		dbPath = filepath.Join(".", defaultDBFile)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), dbDirMode); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, dbFileMode, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(downloadsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func (b *BoltDB) StoreDownload(download *Download) error {
	if download.Hash == "" {
		return fmt.Errorf("download has no hash")
	}
	if download.AddedAt.IsZero() {
		download.AddedAt = time.Now()
	}

	value, err := json.Marshal(download)
	if err != nil {
		return fmt.Errorf("failed to encode download: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(downloadsBucket).Put([]byte(download.Hash), value)
	})
}

func (b *BoltDB) GetDownloads() ([]Download, error) {
	var downloads []Download

	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(downloadsBucket).ForEach(func(_, v []byte) error {
			var download Download
			if err := json.Unmarshal(v, &download); err != nil {
				return fmt.Errorf("failed to decode download: %w", err)
			}
			downloads = append(downloads, download)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return downloads, nil
}

func (b *BoltDB) DownloadedHashes() (map[string]bool, error) {
	hashes := make(map[string]bool)

	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(downloadsBucket).ForEach(func(k, _ []byte) error {
			hashes[string(k)] = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return hashes, nil
}

func (b *BoltDB) DeleteDownload(hash string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(downloadsBucket).Delete([]byte(hash))
	})
}

func (b *BoltDB) Close() error {
	return b.db.Close()
}
