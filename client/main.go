package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/wfunc/duet/game"
	"github.com/wfunc/duet/models"
	"github.com/wfunc/duet/protocol"
	"github.com/wfunc/duet/timer"
	"github.com/wfunc/duet/voice"
)

// termUI renders the session's side effects to the terminal.
type termUI struct{}

func (termUI) DrawDot(x, y float64, color string) {
	pterm.DefaultLogger.Debug(pterm.Sprintf("dot at (%.0f, %.0f) %s", x, y, color))
}

func (termUI) Notice(msg string) {
	pterm.DefaultLogger.Info(msg)
}

func (termUI) UpdateScoreboard(sb models.Scoreboard) {
	pterm.DefaultLogger.Info(pterm.Sprintf("Round %d/%d | You: %d Partner: %d",
		sb.Round, sb.MaxRounds, sb.YourScore, sb.PartnerScore))
}

func (termUI) ShowSwitchPrompt() {
	pterm.DefaultLogger.Info("Partner wants to switch to the word race! Type 'accept' or 'decline'.")
}

func (termUI) HideSwitchPrompt() {
	pterm.DefaultLogger.Info("Switch prompt dismissed.")
}

func (termUI) BlitzStatus(msg string) {
	pterm.DefaultLogger.Info("Word race: " + msg)
}

func (termUI) ShowFinal(result models.FinalResult) {
	var headline string
	switch result.Verdict {
	case models.VerdictYou:
		headline = "You win!"
	case models.VerdictPartner:
		headline = "Partner wins!"
	default:
		headline = "Draw!"
	}
	pterm.DefaultLogger.Info(pterm.Sprintf("%s You: %d Partner: %d",
		headline, result.YourScore, result.PartnerScore))
}

// connEmitter adapts the relay connection to the session and voice
// emitter interfaces.
type connEmitter struct {
	conn *protocol.WSConn
}

func (e *connEmitter) Emit(ev protocol.Event) error {
	return e.conn.WriteEvent(ev)
}

func main() {
	url := flag.String("url", "ws://localhost:3000/ws", "relay endpoint")
	room := flag.String("room", "", "room ID; both parties must use the same one")
	initiator := flag.Bool("initiator", false, "this side starts the voice handshake")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	target := *url
	if *room != "" {
		target += "?room=" + *room
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	conn, err := protocol.Dial(ctx, target)
	cancel()
	if err != nil {
		pterm.DefaultLogger.Error(pterm.Sprintf("Dial failed: %v", err))
		os.Exit(1)
	}
	defer conn.Close()
	pterm.DefaultLogger.Info("Connected to " + target)

	emitter := &connEmitter{conn: conn}
	sched := timer.NewManager()
	defer sched.Stop()
	session := game.NewSession(emitter, sched, termUI{})

	bridge, err := voice.NewBridge(*initiator, emitter)
	if err != nil {
		pterm.DefaultLogger.Error(pterm.Sprintf("Voice bridge failed: %v", err))
		os.Exit(1)
	}
	defer bridge.Close()
	if err := bridge.Start(); err != nil {
		pterm.DefaultLogger.Warn(pterm.Sprintf("Voice handshake failed: %v", err))
	}

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			ev, err := conn.ReadEvent()
			if err != nil {
				if err == protocol.ErrMalformedEvent {
					continue
				}
				pterm.DefaultLogger.Warn(pterm.Sprintf("Read error: %v", err))
				return
			}
			if ev.Name == protocol.EventVoiceSignal {
				bridge.HandleSignal(ev.Data)
				continue
			}
			session.HandleEvent(*ev)
		}
	}()

	pterm.DefaultLogger.Info("Commands: chat <msg> | draw <x> <y> | save | skip | switch | accept | decline | arm | guess <word> | mute | quit")

	lines := make(chan string)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			text, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimSpace(text)
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			pterm.DefaultLogger.Info("Interrupt received, closing connection.")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := runCommand(session, bridge, line); quit {
				return
			}
		}
	}
}

func runCommand(session *game.Session, bridge *voice.Bridge, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "":
	case "chat":
		session.SendChat(rest)
	case "draw":
		xs, ys, _ := strings.Cut(rest, " ")
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			pterm.DefaultLogger.Warn("Usage: draw <x> <y>")
			return false
		}
		session.SetPressed(true)
		session.PointerMove(x, y)
		session.SetPressed(false)
	case "save":
		session.Save()
	case "skip":
		session.Skip()
	case "switch":
		session.RequestSwitch()
	case "accept":
		session.AcceptSwitch()
	case "decline":
		session.DeclineSwitch()
	case "arm":
		session.ArmBlitz()
		pterm.DefaultLogger.Info("Your word: " + session.CurrentWord())
	case "guess":
		if !session.SubmitGuess(rest) {
			pterm.DefaultLogger.Info("Not it.")
		}
	case "mute":
		muted := !bridge.Muted()
		bridge.SetMuted(muted)
		session.SetMuted(muted)
		if muted {
			pterm.DefaultLogger.Info("Mic muted (your partner is not told).")
		} else {
			pterm.DefaultLogger.Info("Mic live.")
		}
	case "quit":
		return true
	default:
		pterm.DefaultLogger.Warn("Unknown command: " + cmd)
	}
	return false
}
