package cache

import "reflect"

// ValidKey reports whether k can be stored: nil interfaces, pointers,
// channels, funcs and maps are rejected. Other comparable kinds are always
// valid.
func ValidKey[K comparable](k K) bool {
	a := any(k)
	if a == nil {
		return false
	}
	switch v := reflect.ValueOf(a); v.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Func, reflect.Map, reflect.UnsafePointer, reflect.Interface:
		return !v.IsNil()
	}
	return true
}
