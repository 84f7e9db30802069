package corpus

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/cespare/xxhash/v2"
)

var cacheBucket = []byte("extractions")

type cacheEntry struct {
	Hash   uint64            `json:"hash"`
	Result *ExtractionResult `json:"result"`
}

// ResultCache remembers extraction results keyed by relative path. An entry
// is only used when the raw bytes and the rule table are unchanged, so a
// cached run writes exactly what an uncached run would.
type ResultCache struct {
	db          *bolt.DB
	fingerprint uint64
}

// OpenResultCache opens (creating if needed) the bolt database at filename.
func OpenResultCache(filename string, fingerprint uint64) (*ResultCache, error) {
	db, err := bolt.Open(filename, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &ResultCache{db: db, fingerprint: fingerprint}, nil
}

func (rc *ResultCache) Close() error {
	return rc.db.Close()
}

func (rc *ResultCache) hash(raw []byte) uint64 {
	var fp [8]byte
	binary.LittleEndian.PutUint64(fp[:], rc.fingerprint)
	d := xxhash.New()
	d.Write(fp[:])
	d.Write(raw)
	return d.Sum64()
}

// Get returns the cached result for rel if it was produced from raw.
func (rc *ResultCache) Get(rel string, raw []byte) (*ExtractionResult, bool, error) {
	var entry *cacheEntry
	if err := rc.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(cacheBucket).Get([]byte(rel))
		if data == nil {
			return nil
		}
		entry = &cacheEntry{}
		return json.Unmarshal(data, entry)
	}); err != nil {
		return nil, false, err
	}
	if entry == nil || entry.Result == nil || entry.Hash != rc.hash(raw) {
		return nil, false, nil
	}
	return entry.Result, true, nil
}

// Put stores res as the result for rel produced from raw.
func (rc *ResultCache) Put(rel string, raw []byte, res *ExtractionResult) error {
	value, err := json.Marshal(&cacheEntry{Hash: rc.hash(raw), Result: res})
	if err != nil {
		return err
	}
	return rc.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(rel), value)
	})
}
