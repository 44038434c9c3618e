package refdata

import "sync"

// LoadFunc produces reference data. It is called at most once per Cache.
type LoadFunc func() (*ReferenceData, error)

// Cache holds process-wide reference data. The first Get runs the loader;
// concurrent callers block until it finishes. The outcome, success or
// failure, is kept for the life of the Cache and never refreshed.
type Cache struct {
	load LoadFunc
	once sync.Once
	data *ReferenceData
	err  error
}

// NewCache creates a cache around load
func NewCache(load LoadFunc) *Cache {
	return &Cache{load: load}
}

// Get returns the loaded reference data or the load error.
func (c *Cache) Get() (*ReferenceData, error) {
	c.once.Do(func() {
		c.data, c.err = c.load()
		if c.err != nil {
			c.data = nil
		}
	})
	return c.data, c.err
}

var shared = NewCache(LoadDefault)

// Shared returns the process default reference data loaded from the
// embedded files.
func Shared() (*ReferenceData, error) {
	return shared.Get()
}
