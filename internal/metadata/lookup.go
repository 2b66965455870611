package metadata

// Lookup is the outcome of describing a stored object: either the object's
// attributes were found, or the object store was unavailable for it.
type Lookup struct {
	attrs ObjectAttributes
	err   error
}

// Found wraps attributes returned by the object store.
func Found(attrs ObjectAttributes) Lookup {
	return Lookup{attrs: attrs}
}

// Unavailable records why the object store could not describe the object.
func Unavailable(reason error) Lookup {
	return Lookup{err: reason}
}

// Found returns the attributes and true when the lookup succeeded.
func (l Lookup) Found() (ObjectAttributes, bool) {
	if l.err != nil {
		return ObjectAttributes{}, false
	}
	return l.attrs, true
}

// Reason is the failure behind an Unavailable lookup, nil otherwise.
func (l Lookup) Reason() error {
	return l.err
}
