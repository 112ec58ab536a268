package model

// Property is a single key/value pair.
type Property struct {
	Key   string
	Value string
}

// Properties is an ordered key/value sequence with last-wins semantics.
type Properties []Property

// Get returns the value for key and whether it is present.
func (p Properties) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Value returns the value for key, or "" when absent.
func (p Properties) Value(key string) string {
	v, _ := p.Get(key)
	return v
}

// Set stores value under key. An existing key keeps its position.
func (p *Properties) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Property{Key: key, Value: value})
}

// Keys returns the keys in order.
func (p Properties) Keys() []string {
	if len(p) == 0 {
		return nil
	}
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Clone returns an independent copy.
func (p Properties) Clone() Properties {
	if len(p) == 0 {
		return nil
	}
	return append(Properties(nil), p...)
}

// Equal reports whether both sequences hold the same pairs in the same order.
func (p Properties) Equal(o Properties) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}
