// Package merge provides the reflection helpers behind flat-store merges and
// devtools snapshots: deep cloning of arbitrary values and a shallow overlay
// of a partial value onto a base.
package merge

import "reflect"

// Shallow overlays partial onto base one level deep and returns the merged
// value; neither input is mutated. For struct types every non-zero exported
// field of partial replaces the base field wholesale; for maps every entry
// present in partial replaces the base entry. Anything else returns partial
// when it is non-zero, base otherwise.
func Shallow[T any](base, partial T) T {
	baseValue := reflect.ValueOf(base)
	partialValue := reflect.ValueOf(partial)

	if !partialValue.IsValid() {
		return base
	}

	switch partialValue.Kind() {
	case reflect.Struct:
		result := cloneValue(baseValue)
		if !result.IsValid() || result.Type() != partialValue.Type() {
			result = reflect.New(partialValue.Type()).Elem()
		}
		for i := 0; i < partialValue.NumField(); i++ {
			field := result.Field(i)
			if !field.CanSet() {
				continue
			}
			overlay := partialValue.Field(i)
			if overlay.IsZero() {
				continue
			}
			field.Set(cloneValue(overlay))
		}
		return result.Interface().(T)
	case reflect.Map:
		if partialValue.IsNil() {
			return base
		}
		result := reflect.MakeMapWithSize(partialValue.Type(), partialValue.Len())
		if baseValue.IsValid() && baseValue.Kind() == reflect.Map && !baseValue.IsNil() {
			iter := baseValue.MapRange()
			for iter.Next() {
				result.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
			}
		}
		iter := partialValue.MapRange()
		for iter.Next() {
			result.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return result.Interface().(T)
	default:
		if partialValue.IsZero() {
			return base
		}
		return partial
	}
}

// Clone returns a deep copy of value detached from every reference the
// original holds.
func Clone[T any](value T) T {
	cloned := cloneValue(reflect.ValueOf(value))
	if !cloned.IsValid() {
		var zero T
		return zero
	}
	return cloned.Interface().(T)
}

// CloneAny deep copies a dynamic value, as held by the tree store.
func CloneAny(value any) any {
	if value == nil {
		return nil
	}
	cloned := cloneValue(reflect.ValueOf(value))
	if !cloned.IsValid() {
		return nil
	}
	return cloned.Interface()
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		return elem.Convert(v.Type())
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		return reflect.ValueOf(v.Interface())
	}
}
