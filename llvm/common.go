// Package llvm is the stable bridge between the compiler's code generator and
// the native backend.  Every entry point accepts and returns opaque handles
// and caller-side enumerations with frozen numeric values; internally the
// handles unwrap to backend nodes and the enumerations convert through total
// mappings whose unknown-value default is a fatal internal error.
package llvm

// OwnedObject represents a disposable backend object whose lifetime is bound
// to the context that created it.
type OwnedObject interface {
	// dispose frees all the resources associated with the backend object.
	dispose()
}

// Context represents the root owner of a compilation's backend objects.  A
// context and everything rooted under it is used by exactly one worker thread
// at a time; the bridge performs no internal locking.
type Context struct {
	// The list of backend objects owned by this context, in creation order.
	ownedObjects []OwnedObject

	// The installed diagnostic handler, if any.
	diagHandler DiagnosticHandler

	// The negotiated backend feature set.
	features FeatureSet
}

// NewContext creates a new context negotiated against the given backend
// version string.  An unparsable version is a fatal error: the caller's build
// system pinned the backend, so a bad version means the toolchain install is
// broken, not the input.
func NewContext(backendVersion string) *Context {
	return &Context{features: NegotiateFeatures(backendVersion)}
}

// Features returns the backend feature set negotiated when the context was
// created.
func (c *Context) Features() FeatureSet {
	return c.features
}

// takeOwnership marks the given disposable backend object as being owned by
// this context: this context is responsible for its disposal.
func (c *Context) takeOwnership(obj OwnedObject) {
	c.ownedObjects = append(c.ownedObjects, obj)
}

// Dispose frees all the resources associated with this context: the context
// itself and all the owned resources of this context.  Owned objects are
// released in reverse creation order so that builders go before the modules
// they were created for.
func (c *Context) Dispose() {
	for i := len(c.ownedObjects) - 1; i >= 0; i-- {
		c.ownedObjects[i].dispose()
	}

	c.ownedObjects = nil
}

// -----------------------------------------------------------------------------

// Iterator is a generic iterator used to traverse backend data structures.
// It is used as follows:
//
//	for it := v.Items(); it.Next(); {
//		item := it.Item()
//		...
//	}
type Iterator[T any] interface {
	// Item returns the current item the iterator is positioned over if it
	// exists.  If the item does not exist, the return value is invalid.
	Item() T

	// Next moves the iterator forward one element if an element exists.  It
	// returns whether or not it was able to move the iterator forward.  Next
	// must be called before the first element is accessed.
	Next() bool
}
