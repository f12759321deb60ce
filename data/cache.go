// data/cache.go
package data

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// Cache is a disk-backed TTL cache sitting in front of the data providers.
// Entries expire on their own; readers only ever see fresh-enough data or a
// miss. Prices and fundamentals carry independent TTLs because fundamentals
// drift faster than a closed day's bars.
type Cache struct {
	db             *badger.DB
	priceTTL       time.Duration
	fundamentalTTL time.Duration
	directory      string
}

// CacheStats summarizes the cache for reporting.
type CacheStats struct {
	Entries        int     `json:"entries"`
	Directory      string  `json:"directory"`
	PriceTTLHours  float64 `json:"price_ttl_hours"`
	LSMSizeBytes   int64   `json:"lsm_size_bytes"`
	VLogSizeBytes  int64   `json:"vlog_size_bytes"`
}

// NewCache opens (or creates) a cache at dir. An empty dir opens an
// in-memory cache, which tests use.
func NewCache(dir string, priceTTL, fundamentalTTL time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // disable internal logging
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	return &Cache{db: db, priceTTL: priceTTL, fundamentalTTL: fundamentalTTL, directory: dir}, nil
}

// Key layout: type|source|ticker|... — the ticker always sits in the third
// segment so ClearTicker can match it without parsing values.
func priceKey(source, ticker string, start, end time.Time, interval string) []byte {
	return []byte(fmt.Sprintf("prices|%s|%s|%s|%s|%s",
		source, ticker, start.Format("2006-01-02"), end.Format("2006-01-02"), interval))
}

func fundamentalKey(source, ticker string) []byte {
	return []byte(fmt.Sprintf("fundamentals|%s|%s", source, ticker))
}

// GetPrices returns the cached series and whether the lookup hit.
func (c *Cache) GetPrices(source, ticker string, start, end time.Time, interval string) ([]PriceBar, bool) {
	var bars []PriceBar
	if !c.get(priceKey(source, ticker, start, end, interval), &bars) {
		return nil, false
	}
	return bars, true
}

func (c *Cache) SetPrices(source, ticker string, start, end time.Time, interval string, bars []PriceBar) error {
	return c.set(priceKey(source, ticker, start, end, interval), bars, c.priceTTL)
}

func (c *Cache) GetFundamentals(source, ticker string) (*Fundamentals, bool) {
	var f Fundamentals
	if !c.get(fundamentalKey(source, ticker), &f) {
		return nil, false
	}
	return &f, true
}

func (c *Cache) SetFundamentals(source, ticker string, f *Fundamentals) error {
	return c.set(fundamentalKey(source, ticker), f, c.fundamentalTTL)
}

func (c *Cache) get(key []byte, target interface{}) bool {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, target)
		})
	})
	return err == nil
}

func (c *Cache) set(key []byte, value interface{}, ttl time.Duration) error {
	val, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, val).WithTTL(ttl))
	})
}

// ClearTicker drops every cached entry for one symbol and reports how many
// entries were removed.
func (c *Cache) ClearTicker(ticker string) (int, error) {
	marker := "|" + ticker + "|"
	suffix := "|" + ticker
	count := 0
	err := c.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		var doomed [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			k := string(it.Item().Key())
			if strings.Contains(k, marker) || strings.HasSuffix(k, suffix) {
				key := it.Item().KeyCopy(nil)
				doomed = append(doomed, key)
			}
		}
		for _, k := range doomed {
			if err := txn.Delete(k); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Stats walks the keyspace; badger has no O(1) entry count.
func (c *Cache) Stats() CacheStats {
	entries := 0
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			entries++
		}
		return nil
	})
	lsm, vlog := c.db.Size()
	return CacheStats{
		Entries:       entries,
		Directory:     c.directory,
		PriceTTLHours: c.priceTTL.Hours(),
		LSMSizeBytes:  lsm,
		VLogSizeBytes: vlog,
	}
}

// Close flushes and closes the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}
