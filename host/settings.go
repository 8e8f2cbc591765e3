// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

// settings holds the REPL's configuration variables: both simulation
// parameters (read only once at load time) and display/paging state
// carried between commands.
type settings struct {
	CoreSize          int  `doc:"core memory size in cells"`
	ReadLimit         int  `doc:"read-distance limit (0 = core size)"`
	WriteLimit        int  `doc:"write-distance limit (0 = core size)"`
	MinimumSeparation int  `doc:"minimum cell gap enforced between warriors"`
	MaxProcesses      int  `doc:"max queued processes per warrior (0 = core size)"`
	MaxRounds         int  `doc:"rounds a battle runs before declaring a tie"`
	Randomize         bool `doc:"randomize warrior placement on load"`
	DisasmLines       int  `doc:"default number of lines to disassemble"`
	MaxStepLines      int  `doc:"not read by any command; step prints no disassembly"`
	NextDisasmAddr    int  `doc:"address of next disassembly"`
}

func newSettings() *settings {
	return &settings{
		CoreSize:          8000,
		MinimumSeparation: 100,
		MaxRounds:         8000,
		Randomize:         true,
		DisasmLines:       10,
		MaxStepLines:      20,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var s string
		switch f.kind {
		case reflect.Bool:
			s = fmt.Sprintf("    %-20s %v", f.name, v.Bool())
		default:
			s = fmt.Sprintf("    %-20s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-32s (%s)\n", s, f.doc)
	}
}

func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}

	vIn := reflect.ValueOf(value)
	if (f.kind == reflect.String && vIn.Type().Kind() != reflect.String) ||
		(f.kind != reflect.String && vIn.Type().Kind() == reflect.String) ||
		!vIn.Type().ConvertibleTo(f.typ) {
		return errors.New("invalid type")
	}
	vInConverted := vIn.Convert(f.typ)

	vOut := reflect.ValueOf(s).Elem().Field(f.index).Addr().Elem()
	vOut.Set(vInConverted)

	return nil
}
