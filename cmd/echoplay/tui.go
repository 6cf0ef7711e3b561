package main

import (
	"fmt"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/cwbudde/algo-echo/dsp/echo"
)

const (
	colDef    = termbox.ColorDefault
	colWhite  = termbox.ColorWhite
	colRed    = termbox.ColorRed
	colGreen  = termbox.ColorGreen
	colYellow = termbox.ColorYellow
	colCyan   = termbox.ColorCyan
)

const (
	lengthStep   = 0.05
	feedbackStep = 0.05
)

var paramNames = []string{
	"Delay length (s)",
	"Feedback",
}

type tuiState struct {
	host     *host
	log      []echo.TestEntry
	selected int
	exit     bool
}

func runTUI(h *host, log []echo.TestEntry) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	defer termbox.Close()

	termbox.SetInputMode(termbox.InputEsc)

	state := &tuiState{host: h, log: log}

	events := make(chan termbox.Event)
	done := make(chan struct{})
	go pumpEvents(termbox.PollEvent, events, done)
	defer func() {
		close(done)
		termbox.Interrupt()
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	draw(state)

	for !state.exit {
		select {
		case ev := <-events:
			switch ev.Type {
			case termbox.EventKey:
				handleKey(ev, state)
				draw(state)
			case termbox.EventResize:
				draw(state)
			}
		case <-ticker.C:
			draw(state)
		}
	}
	return nil
}

// pumpEvents forwards polled events until done is closed or poll reports
// an interrupt.
func pumpEvents(poll func() termbox.Event, events chan<- termbox.Event, done <-chan struct{}) {
	for {
		ev := poll()
		if ev.Type == termbox.EventInterrupt {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func handleKey(ev termbox.Event, s *tuiState) {
	if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q' {
		s.exit = true
		return
	}

	switch ev.Key {
	case termbox.KeyArrowUp:
		s.selected--
		if s.selected < 0 {
			s.selected = len(paramNames) - 1
		}
	case termbox.KeyArrowDown:
		s.selected++
		if s.selected >= len(paramNames) {
			s.selected = 0
		}
	}

	sign := 0.0
	switch ev.Key {
	case termbox.KeyArrowRight:
		sign = 1
	case termbox.KeyArrowLeft:
		sign = -1
	}
	if sign == 0 {
		return
	}

	switch s.selected {
	case 0:
		s.host.adjustLength(sign * lengthStep)
	case 1:
		s.host.adjustFeedback(sign * feedbackStep)
	}
}

func draw(s *tuiState) {
	_ = termbox.Clear(colDef, colDef)

	st := s.host.state()

	printTB(0, 0, colCyan, colDef, "algo-echo - feedback delay")
	printTB(0, 1, colWhite, colDef, fmt.Sprintf("Sample Rate: %.0f Hz", st.SampleRate))
	printTB(0, 2, colDef, colDef, "Up/Down select, Left/Right adjust, 'q' or Esc to quit.")

	gate, gateCol := "OPEN", colGreen
	if !st.OutputEnabled {
		gate, gateCol = "MUTED (self-test failed)", colRed
	}
	printTB(0, 3, colDef, colDef, "Output:")
	printTB(8, 3, gateCol, colDef, gate)

	vals := []string{
		fmt.Sprintf("%.2f  (%d samples)", st.Length, st.ActiveSamples),
		fmt.Sprintf("%.2f", st.Feedback),
	}
	for i, name := range paramNames {
		fg, bg, prefix := colWhite, colDef, "  "
		if i == s.selected {
			fg, bg, prefix = colDef, colWhite, "> "
		}
		printTB(0, 5+i, fg, bg, fmt.Sprintf("%-20s %s", prefix+name, vals[i]))
	}

	meterY := 8
	printTB(0, meterY, colYellow, colDef, "Output level:")
	for ch, db := range st.LevelsDB {
		drawMeter(meterY+1+ch, fmt.Sprintf("Ch %d", ch+1), db, colGreen)
	}

	logY := meterY + 2 + len(st.LevelsDB)
	printTB(0, logY, colYellow, colDef, "Self-test:")
	for i, e := range s.log {
		mark, col := "pass", colGreen
		if !e.Passed {
			mark, col = "FAIL", colRed
		}
		printTB(2, logY+1+i, col, colDef, mark)
		printTB(8, logY+1+i, colDef, colDef, fmt.Sprintf("%-20s %s", e.Name, e.Message))
	}

	termbox.Flush()
}

func drawMeter(y int, label string, db float64, color termbox.Attribute) {
	const (
		barWidth = 50
		xPos     = 2
		minDB    = -72.0
		maxDB    = 6.0
	)

	db = max(minDB, min(maxDB, db))
	filled := int((db - minDB) / (maxDB - minDB) * barWidth)

	printTB(xPos, y, colDef, colDef, fmt.Sprintf("%s [%6.1f dB] ", label, db))
	startX := xPos + 18
	for i := range barWidth {
		ch, fg := '-', colDef
		if i < filled {
			ch, fg = '|', color
		}
		termbox.SetCell(startX+i, y, ch, fg, colDef)
	}
}

func printTB(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x++
	}
}
