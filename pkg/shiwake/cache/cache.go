package cache

import (
	"os"

	"github.com/shiwake/shiwake/pkg/shiwake/metadata"
)

// Cache is the validated view over a Store. Lookup only returns metadata
// whose recorded size and mtime still match the file on disk.
type Cache struct {
	store *Store
}

// New creates a Cache over an open store.
func New(store *Store) *Cache {
	return &Cache{store: store}
}

// Lookup returns cached metadata for the path if the entry is still valid
// for the given file state. A stale entry is removed and reported as a miss.
func (c *Cache) Lookup(path string, info os.FileInfo) (metadata.FileMetadata, bool) {
	entry, err := c.store.Get(path)
	if err != nil {
		return metadata.FileMetadata{}, false
	}

	if entry.Size != info.Size() || entry.ModTimeNano != info.ModTime().UnixNano() {
		_ = c.store.Delete(path)
		return metadata.FileMetadata{}, false
	}

	return metadata.New(entry.Fields), true
}

// Store records extracted metadata for the path keyed to the file state it
// was extracted from.
func (c *Cache) Store(path string, info os.FileInfo, md metadata.FileMetadata) error {
	fields := make(map[string]metadata.Value, md.Len())
	for _, name := range md.Fields() {
		v, _ := md.Get(name)
		fields[name] = v
	}

	return c.store.Put(path, &Entry{
		Size:        info.Size(),
		ModTimeNano: info.ModTime().UnixNano(),
		Fields:      fields,
	})
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
