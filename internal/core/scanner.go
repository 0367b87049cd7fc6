package core

import (
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coregx/sqlcond/internal/dialects"
)

// scanner decodes records into structs using cached field metadata.
type scanner struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*structInfo
}

// structInfo maps lower-cased column names to field index paths.
type structInfo struct {
	fields map[string][]int
}

func newScanner() *scanner {
	return &scanner{cache: make(map[reflect.Type]*structInfo)}
}

var globalScanner = newScanner()

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

func (s *scanner) structInfo(typ reflect.Type) *structInfo {
	s.mu.RLock()
	info, ok := s.cache[typ]
	s.mu.RUnlock()
	if ok {
		return info
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.cache[typ]; ok {
		return info
	}
	info = &structInfo{fields: make(map[string][]int)}
	collectFields(typ, nil, info.fields)
	s.cache[typ] = info
	return info
}

// collectFields walks exported fields, descending into embedded structs.
// Outer fields win over embedded ones with the same column name.
func collectFields(typ reflect.Type, index []int, out map[string][]int) {
	var embedded []reflect.StructField
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		path := append(append([]int{}, index...), i)

		name := field.Name
		if tag, ok := field.Tag.Lookup("db"); ok {
			if tag == "-" {
				continue
			}
			if col, _, _ := strings.Cut(tag, ","); col != "" {
				name = col
			}
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct && field.Tag.Get("db") == "" {
			field.Index = path
			embedded = append(embedded, field)
			continue
		}

		key := strings.ToLower(name)
		if _, ok := out[key]; !ok {
			out[key] = path
		}
	}
	for _, f := range embedded {
		collectFields(f.Type, f.Index, out)
	}
}

// decodeRecord copies rec into dest, a pointer to a struct. Columns without
// a matching field are ignored.
func decodeRecord(rec Record, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("scanner: dest must be pointer to struct, got %T", dest)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("scanner: dest must be pointer to struct, got pointer to %s", v.Kind())
	}
	return globalScanner.decode(rec, v)
}

// decodeRecords fills dest, a pointer to a slice of structs or struct
// pointers, replacing its contents.
func decodeRecords(records []Record, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("scanner: dest must be pointer to slice, got %T", dest)
	}
	slice := v.Elem()
	if slice.Kind() != reflect.Slice {
		return fmt.Errorf("scanner: dest must be pointer to slice, got pointer to %s", slice.Kind())
	}

	elemType := slice.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	if isPtr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("scanner: slice element must be struct or *struct, got %s", elemType.Kind())
	}

	out := reflect.MakeSlice(slice.Type(), 0, len(records))
	for _, rec := range records {
		elem := reflect.New(elemType)
		if err := globalScanner.decode(rec, elem.Elem()); err != nil {
			return err
		}
		if isPtr {
			out = reflect.Append(out, elem)
		} else {
			out = reflect.Append(out, elem.Elem())
		}
	}
	slice.Set(out)
	return nil
}

func (s *scanner) decode(rec Record, v reflect.Value) error {
	info := s.structInfo(v.Type())
	for col, value := range rec {
		path, ok := info.fields[strings.ToLower(col)]
		if !ok {
			continue
		}
		field := v.FieldByIndex(path)
		if err := assign(field, value); err != nil {
			return fmt.Errorf("scanner: column %s: %w", col, err)
		}
	}
	return nil
}

// assign stores a driver value into field, converting between the basic
// kinds drivers return and the field type.
func assign(field reflect.Value, value any) error {
	if field.CanAddr() && field.Addr().Type().Implements(scannerType) {
		return field.Addr().Interface().(sql.Scanner).Scan(value)
	}

	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Ptr {
		elem := reflect.New(field.Type().Elem())
		if err := assign(elem.Elem(), value); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	src := reflect.ValueOf(value)
	if field.Type() == timeType {
		t, err := dialects.ParseTime(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
			return nil
		}
		field.SetString(fmt.Sprint(value))
		return nil
	case reflect.Bool:
		b, err := Record{"v": value}.Bool("v")
		if err != nil {
			return err
		}
		field.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if s, ok := value.(string); ok {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(n)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if s, ok := value.(string); ok {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return err
			}
			field.SetUint(n)
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if s, ok := value.(string); ok {
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			field.SetFloat(n)
			return nil
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.Uint8 {
			if s, ok := value.(string); ok {
				field.SetBytes([]byte(s))
				return nil
			}
		}
	}

	if src.Type().AssignableTo(field.Type()) {
		field.Set(src)
		return nil
	}
	if src.Type().ConvertibleTo(field.Type()) && isNumeric(src.Kind()) == isNumeric(field.Kind()) {
		field.Set(src.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
