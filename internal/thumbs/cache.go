package thumbs

import (
	"container/list"
	"image"
)

// Key identifies one rendered thumbnail. Rev comes from the document store
// and changes whenever the effect's appearance may have changed, so a key
// is immutable: stale entries are simply never asked for again and age out.
type Key struct {
	Seq    int
	Track  int
	Effect int
	Rev    int
}

type entry struct {
	key Key
	img *image.RGBA
}

// Cache holds rendered thumbnails with least-recently-used eviction. Not
// goroutine safe; it lives on the UI goroutine.
type Cache struct {
	max   int
	order *list.List // front is most recent
	items map[Key]*list.Element
}

func NewCache(max int) *Cache {
	if max < 1 {
		max = 1
	}
	return &Cache{
		max:   max,
		order: list.New(),
		items: make(map[Key]*list.Element, max),
	}
}

// Get returns the cached image and refreshes its recency.
func (c *Cache) Get(k Key) (*image.RGBA, bool) {
	el, ok := c.items[k]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).img, true
}

// Add stores an image, evicting the least recently used entry when full.
func (c *Cache) Add(k Key, img *image.RGBA) {
	if el, ok := c.items[k]; ok {
		el.Value.(*entry).img = img
		c.order.MoveToFront(el)
		return
	}
	c.items[k] = c.order.PushFront(&entry{key: k, img: img})
	for c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

func (c *Cache) Len() int { return c.order.Len() }
