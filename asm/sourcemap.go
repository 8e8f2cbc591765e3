// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"sort"
)

// A SourceMap describes the mapping between a warrior's instruction
// offsets (relative to its first instruction) and the source line that
// assembled into them. Unlike go6502's SourceMap this is a pure
// in-memory index: a loaded warrior has no linked object-file format to
// persist, so the binary encode/decode half of go6502's version is
// dropped entirely - there is no loader stage that would ever read it
// back in.
type SourceMap struct {
	Lines []SourceLine
}

// A SourceLine maps one instruction offset to the source line that
// produced it.
type SourceLine struct {
	Address int
	Line    int
}

// NewSourceMap creates an empty source map.
func NewSourceMap() *SourceMap {
	return &SourceMap{Lines: []SourceLine{}}
}

// Find returns the source line number that assembled into addr.
func (s *SourceMap) Find(addr int) (line int, err error) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.Lines[i].Line, nil
	}
	return 0, fmt.Errorf("address %d not found in source map", addr)
}

func (s *SourceMap) add(addr, line int) {
	s.Lines = append(s.Lines, SourceLine{Address: addr, Line: line})
}
