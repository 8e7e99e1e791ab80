package editor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"

	"quotacard/internal/domain"
)

// PagerOps shows longer content in the ov pager, handing the terminal over
// and back around it.
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps(program *tea.Program) *PagerOps {
	return &PagerOps{program: program}
}

// ShowQuoteHistory shows the quote history using the ov pager.
func (p *PagerOps) ShowQuoteHistory(content string) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}

	// Ensure terminal is restored even if ov fails
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal() // Ignore error as we're in defer context
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	// Run the oviewer (this will take over the terminal)
	return root.Run()
}

// RenderQuoteHistory formats fetched quotes for the pager, newest first.
func RenderQuoteHistory(history []domain.Quote) string {
	if len(history) == 0 {
		return "No quotes fetched yet.\n"
	}

	var b strings.Builder
	b.WriteString("Quote history\n\n")
	for i := len(history) - 1; i >= 0; i-- {
		q := history[i]
		b.WriteString(fmt.Sprintf("%s\n  “%s”\n  — %s\n\n",
			q.FetchedAt.Format("15:04:05"), q.Content, q.Author))
	}
	return b.String()
}
