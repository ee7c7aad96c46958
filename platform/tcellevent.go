/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package platform

import (
	"github.com/gdamore/tcell"

	"github.com/andreas-jonsson/memstep/emulator/debug"
)

const helpText = "left/right: markers  h/l: byte  pgup/pgdn: page  +/-: width  n: step  q: quit"

// Start runs the interactive viewer on the terminal until the user quits.
func Start(s *Session) error {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	debug.MuteLogging(true)
	defer debug.MuteLogging(false)

	screen.DisableMouse()
	screen.HideCursor()
	return Run(screen, s)
}

// Run handles events from an initialized screen. It returns when the user
// quits or the screen is finalized.
func Run(screen tcell.Screen, s *Session) error {
	r := &Renderer{Screen: screen}
	var msg string

	draw := func() {
		y := r.Draw(s.Grid(), s.Options.CursorRows, s.Status())
		for x, c := range []rune(msg) {
			screen.SetContent(x, y+1, c, nil, styleCursor)
		}
		for x, c := range helpText {
			screen.SetContent(x, y+2, c, nil, styleDim)
		}
		screen.Show()
	}
	draw()

	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
			draw()
		case *tcell.EventKey:
			quit, err := handleKey(s, ev)
			if quit {
				return nil
			}
			msg = ""
			if err != nil {
				msg = err.Error()
			}
			draw()
		}
	}
}

func handleKey(s *Session, ev *tcell.EventKey) (bool, error) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true, nil
	case tcell.KeyLeft:
		s.ShiftLeft()
	case tcell.KeyRight:
		s.ShiftRight()
	case tcell.KeyPgUp:
		s.Seek(int(s.Options.CenterAddress) - 0x100)
	case tcell.KeyPgDn:
		s.Seek(int(s.Options.CenterAddress) + 0x100)
	case tcell.KeyEnter:
		return false, s.Next()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true, nil
		case 'h':
			s.Move(-1)
		case 'l':
			s.Move(1)
		case 'n', ' ':
			return false, s.Next()
		case '+':
			s.Resize(8)
		case '-':
			s.Resize(-8)
		}
	}
	return false, nil
}
