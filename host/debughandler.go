// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/corewar/mars"

// debugHandler receives notifications from the mars.Debugger and
// forwards them to the host.
type debugHandler struct {
	host *Host
}

func newDebugHandler(h *Host) *debugHandler {
	return &debugHandler{host: h}
}

func (h *debugHandler) OnBreakpoint(m *mars.MARS, w *mars.Warrior, b *mars.Breakpoint) {
	h.host.onBreakpoint(w, b)
}

func (h *debugHandler) OnDataBreakpoint(m *mars.MARS, w *mars.Warrior, b *mars.DataBreakpoint) {
	h.host.onDataBreakpoint(w, b)
}
