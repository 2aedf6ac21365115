// Package dump writes human-readable structural dumps of values to a console.
package dump

import (
	"fmt"
	"io"
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

const (
	// DefaultDepth is the default nesting depth shown.
	DefaultDepth = 7

	// DefaultMaxItems is the default number of sequence elements shown.
	DefaultMaxItems = 10
)

// Config holds dumper settings.
type Config struct {
	// Depth bounds nesting; deeper levels print as "<max depth reached>".
	Depth int

	// MaxItems bounds the elements shown per slice. Zero or
	// negative shows everything.
	MaxItems int
}

// DefaultConfig returns the console defaults.
func DefaultConfig() Config {
	return Config{
		Depth:    DefaultDepth,
		MaxItems: DefaultMaxItems,
	}
}

// Dumper renders values with spew under a depth and length bound.
type Dumper struct {
	spew     *spew.ConfigState
	maxItems int
}

// New creates a Dumper.
func New(cfg Config) *Dumper {
	return &Dumper{
		spew: &spew.ConfigState{
			Indent:                  "  ",
			MaxDepth:                cfg.Depth,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		},
		maxItems: cfg.MaxItems,
	}
}

// Fdump writes v to w. When sequences were shortened, a trailer reports how
// many elements were hidden in total.
func (d *Dumper) Fdump(w io.Writer, v interface{}) error {
	shown, hidden := Truncate(v, d.maxItems)
	d.spew.Fdump(w, shown)
	if hidden > 0 {
		if _, err := fmt.Fprintf(w, "... %d more items not shown\n", hidden); err != nil {
			return fmt.Errorf("writing trailer: %w", err)
		}
	}
	return nil
}

// Sdump returns the dump of v as a string.
func (d *Dumper) Sdump(v interface{}) string {
	shown, hidden := Truncate(v, d.maxItems)
	out := d.spew.Sdump(shown)
	if hidden > 0 {
		out += fmt.Sprintf("... %d more items not shown\n", hidden)
	}
	return out
}

// Truncate returns a copy of v in which every slice holds at most max
// elements, and the number of elements dropped. v itself is not modified.
func Truncate(v interface{}, max int) (interface{}, int) {
	if v == nil || max <= 0 {
		return v, 0
	}
	out, hidden := truncate(reflect.ValueOf(v), max)
	return out.Interface(), hidden
}

func truncate(v reflect.Value, max int) (reflect.Value, int) {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return v, 0
		}
		elem, hidden := truncate(v.Elem(), max)
		p := reflect.New(v.Type().Elem())
		p.Elem().Set(elem)
		return p, hidden

	case reflect.Interface:
		if v.IsNil() {
			return v, 0
		}
		elem, hidden := truncate(v.Elem(), max)
		out := reflect.New(v.Type()).Elem()
		out.Set(elem)
		return out, hidden

	case reflect.Slice:
		if v.IsNil() {
			return v, 0
		}
		n := v.Len()
		keep := n
		if keep > max {
			keep = max
		}
		hidden := n - keep
		out := reflect.MakeSlice(v.Type(), keep, keep)
		for i := 0; i < keep; i++ {
			elem, h := truncate(v.Index(i), max)
			out.Index(i).Set(elem)
			hidden += h
		}
		return out, hidden

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		hidden := 0
		for i := 0; i < v.NumField(); i++ {
			f := out.Field(i)
			if !f.CanSet() {
				continue
			}
			elem, h := truncate(v.Field(i), max)
			f.Set(elem)
			hidden += h
		}
		return out, hidden

	default:
		return v, 0
	}
}
