package reactor

import "github.com/corewire/reactor/pkg/meta"

// Tag is a type-safe key into the metadata map carried by jobs, cells,
// scopes and conduits. Two tags with the same key but different type
// parameters are distinct: Get with the wrong T simply misses.
type Tag[T any] struct {
	key string
}

// NewTag creates a tag bound to key. Tags are typically declared as package
// vars (jobNameTag, timeoutTag, statusTag, ...).
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key returns the tag's underlying string key.
func (t Tag[T]) Key() string { return t.key }

// Get retrieves the tagged value from source, reporting false if absent or
// of the wrong type.
func (t Tag[T]) Get(source map[string]any) (T, bool) {
	v, err := meta.Get[T](source, t.key)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// GetOrDefault retrieves the tagged value, or def if absent or mistyped.
func (t Tag[T]) GetOrDefault(source map[string]any, def T) T {
	v, ok := t.Get(source)
	if !ok {
		return def
	}
	return v
}

// Set stores value under the tag's key in source.
func (t Tag[T]) Set(source map[string]any, value T) {
	meta.Set(source, t.key, value)
}

// taggable is implemented by anything carrying a metadata map: jobs, cells,
// scopes, conduits.
type taggable interface {
	metaMap() map[string]any
}

// GetTag reads a tag from any taggable object.
func GetTag[T any](obj taggable, tag Tag[T]) (T, bool) {
	return tag.Get(obj.metaMap())
}

// SetTag writes a tag on any taggable object.
func SetTag[T any](obj taggable, tag Tag[T], value T) {
	tag.Set(obj.metaMap(), value)
}
