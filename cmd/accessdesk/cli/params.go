// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FlagBinder is implemented by params fields that register their own
// flags. [Connection] is one: its --server default comes from
// $ACCESSDESK_SERVER rather than a struct tag.
type FlagBinder interface {
	AddFlags(flagSet *pflag.FlagSet)
}

// FlagsFromParams returns a flag set bound to params, a pointer to a
// command's params struct. A malformed params struct is a programming
// error and panics. Every accessdesk command builds its Flags this way:
//
//	var params listParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
//	    Run:   func(args []string) error { ... params.Status ... },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a flag for every tagged field of the struct
// params points to.
//
// A field is described by three tags:
//
//	flag:"lan-id"          long name
//	flag:"output,o"        long name and shorthand
//	desc:"..."             help text
//	default:"all"          default, parsed as the field's type
//
// Field types: string, bool, int, int64, time.Duration, and []string
// (repeatable, as with --recipient). Embedded structs such as
// [JSONOutput] contribute their own tagged fields; any struct field
// implementing [FlagBinder] binds itself. Embedded structs must be
// exported.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(value.Elem(), flagSet)
}

func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	structType := structValue.Type()
	for i := range structType.NumField() {
		field := structType.Field(i)
		value := structValue.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if !field.IsExported() {
				if field.Anonymous {
					return fmt.Errorf("embedded %s must be exported to bind its flags", field.Name)
				}
				continue
			}
			if binder, ok := value.Addr().Interface().(FlagBinder); ok {
				binder.AddFlags(flagSet)
				continue
			}
			if field.Anonymous {
				if err := bindStruct(value, flagSet); err != nil {
					return fmt.Errorf("%s: %w", field.Name, err)
				}
				continue
			}
		}

		spec, ok := parseFlagSpec(field)
		if !ok {
			continue
		}
		if !field.IsExported() {
			return fmt.Errorf("field %s: flag --%s on an unexported field", field.Name, spec.name)
		}
		if err := spec.bind(value.Addr().Interface(), flagSet); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

// flagSpec is one field's flag as described by its tags.
type flagSpec struct {
	name, shorthand string
	usage           string
	fallback        string
}

func parseFlagSpec(field reflect.StructField) (flagSpec, bool) {
	tag, ok := field.Tag.Lookup("flag")
	if !ok || tag == "" {
		return flagSpec{}, false
	}
	name, shorthand, _ := strings.Cut(tag, ",")
	return flagSpec{
		name:      name,
		shorthand: shorthand,
		usage:     field.Tag.Get("desc"),
		fallback:  field.Tag.Get("default"),
	}, true
}

func (spec flagSpec) bind(target any, flagSet *pflag.FlagSet) error {
	switch target := target.(type) {
	case *string:
		flagSet.StringVarP(target, spec.name, spec.shorthand, spec.fallback, spec.usage)
	case *bool:
		value, err := parseDefault(spec, strconv.ParseBool)
		if err != nil {
			return err
		}
		flagSet.BoolVarP(target, spec.name, spec.shorthand, value, spec.usage)
	case *int:
		value, err := parseDefault(spec, strconv.Atoi)
		if err != nil {
			return err
		}
		flagSet.IntVarP(target, spec.name, spec.shorthand, value, spec.usage)
	case *int64:
		value, err := parseDefault(spec, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
		if err != nil {
			return err
		}
		flagSet.Int64VarP(target, spec.name, spec.shorthand, value, spec.usage)
	case *time.Duration:
		value, err := parseDefault(spec, time.ParseDuration)
		if err != nil {
			return err
		}
		flagSet.DurationVarP(target, spec.name, spec.shorthand, value, spec.usage)
	case *[]string:
		var value []string
		if spec.fallback != "" {
			value = strings.Split(spec.fallback, ",")
		}
		flagSet.StringSliceVarP(target, spec.name, spec.shorthand, value, spec.usage)
	default:
		return fmt.Errorf("unsupported type %T for flag --%s", target, spec.name)
	}
	return nil
}

// parseDefault parses the default tag, treating a missing one as the
// zero value.
func parseDefault[T any](spec flagSpec, parse func(string) (T, error)) (T, error) {
	var zero T
	if spec.fallback == "" {
		return zero, nil
	}
	value, err := parse(spec.fallback)
	if err != nil {
		return zero, fmt.Errorf("default for --%s: %w", spec.name, err)
	}
	return value, nil
}
