package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/aj-kip/erfindung/debugger"
	"github.com/aj-kip/erfindung/isa"
)

// runInspector launches a read-only tview browser over dbg's current
// register snapshot and break-point set. This renders only the
// current-state snapshot the debugger package already computes — never a
// historical execution trace, which spec.md §1 names as an out-of-scope
// pretty-printer.
func runInspector(dbg *debugger.Debugger) error {
	app := tview.NewApplication()

	registers := tview.NewTable().SetBorders(false)
	registers.SetBorder(true).SetTitle(" Registers (press r to refresh, q to quit) ")

	breakpoints := tview.NewTextView().SetDynamicColors(true)
	breakpoints.SetBorder(true).SetTitle(" Break-points ")

	refresh := func() {
		registers.Clear()
		for r := isa.Register(0); int(r) < 8; r++ {
			registers.SetCell(int(r), 0, tview.NewTableCell(dbg.InterpretRegister(r, debugger.AsInt, nil)))
		}

		lines := dbg.Breakpoints.Lines()
		strs := make([]string, len(lines))
		for i, l := range lines {
			strs[i] = fmt.Sprintf("line %d", l)
		}
		breakpoints.Clear()
		fmt.Fprint(breakpoints, strings.Join(strs, "\n"))
	}
	refresh()

	layout := tview.NewFlex().
		AddItem(registers, 0, 1, true).
		AddItem(breakpoints, 0, 1, false)

	layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			app.Stop()
			return nil
		case 'r':
			refresh()
			return nil
		}
		if event.Key() == tcell.KeyEscape {
			app.Stop()
			return nil
		}
		return event
	})

	return app.SetRoot(layout, true).Run()
}
