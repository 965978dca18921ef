// ABOUTME: Icon set with Nerd Font glyphs and plain Unicode fallbacks
// ABOUTME: Detection runs once per process from QUILL_NERD_FONTS and the terminal

package icons

import (
	"os"
	"strings"
	"sync"
)

// nerdFontTerminals usually ship with a patched font
var nerdFontTerminals = []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"}

var hasNerdFonts = sync.OnceValue(func() bool {
	if v := os.Getenv("QUILL_NERD_FONTS"); v != "" {
		return v == "1" || strings.EqualFold(v, "true")
	}
	term, program := os.Getenv("TERM"), os.Getenv("TERM_PROGRAM")
	for _, t := range nerdFontTerminals {
		if strings.Contains(program, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}
	return false
})

// HasNerdFonts reports whether Nerd Font glyphs are used
func HasNerdFonts() bool {
	return hasNerdFonts()
}

// Icon pairs a Nerd Font glyph with a Unicode fallback
type Icon struct {
	NerdFont string
	Fallback string
}

func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	App     = Icon{"󰏪", "✒"} // nf-md-pen
	Post    = Icon{"󰈙", "▤"} // nf-md-file_document
	Like    = Icon{"󰋑", "♥"} // nf-md-heart
	Clock   = Icon{"󰥔", "◷"} // nf-md-clock_outline
	User    = Icon{"󰀄", "☺"} // nf-md-account
	Guest   = Icon{"󰀓", "○"} // nf-md-account_outline
	Loading = Icon{"󰔟", "…"} // nf-md-timer_sand

	CheckOK  = Icon{"", "✓"}
	Warning  = Icon{"", "⚠"}
	Critical = Icon{"", "✗"}
	Info     = Icon{"", "ℹ"}

	New   = Icon{"󰐕", "+"}
	Edit  = Icon{"󰏫", "✎"}
	Login = Icon{"󰍂", "→"}
)
