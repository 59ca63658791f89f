package classifier

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// BlobPlaceholder replaces runs of byte values in logged arguments.
const BlobPlaceholder = "<binary blob>"

// blobMinRun is the shortest byte run collapsed into BlobPlaceholder.
const blobMinRun = 5

// SummarizeArgs renders message arguments for logging. Any run of five or
// more consecutive byte values, such as inline icon data, becomes a single
// BlobPlaceholder.
func SummarizeArgs(args []interface{}) string {
	var b strings.Builder
	writeValue(&b, reflect.ValueOf(args))
	return b.String()
}

func writeValue(b *strings.Builder, v reflect.Value) {
	if !v.IsValid() {
		b.WriteString("<nil>")
		return
	}
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			b.WriteString("<nil>")
			return
		}
		if v.Kind() == reflect.Interface {
			writeValue(b, v.Elem())
			return
		}
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		writeList(b, v)
	case reflect.Map:
		writeMap(b, v)
	default:
		fmt.Fprint(b, v.Interface())
	}
}

func isByte(v reflect.Value) bool {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return v.Kind() == reflect.Uint8
}

func writeList(b *strings.Builder, v reflect.Value) {
	b.WriteByte('[')
	first := true
	sep := func() {
		if !first {
			b.WriteByte(' ')
		}
		first = false
	}
	n := v.Len()
	for i := 0; i < n; {
		if isByte(v.Index(i)) {
			j := i
			for j < n && isByte(v.Index(j)) {
				j++
			}
			if j-i >= blobMinRun {
				sep()
				b.WriteString(BlobPlaceholder)
				i = j
				continue
			}
			for ; i < j; i++ {
				sep()
				writeValue(b, v.Index(i))
			}
			continue
		}
		sep()
		writeValue(b, v.Index(i))
		i++
	}
	b.WriteByte(']')
}

func writeMap(b *strings.Builder, v reflect.Value) {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	b.WriteString("map[")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeValue(b, k)
		b.WriteByte(':')
		writeValue(b, v.MapIndex(k))
	}
	b.WriteByte(']')
}
