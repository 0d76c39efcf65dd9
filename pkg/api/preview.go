package api

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/james-see/ledcostume/pkg/debug"
	"github.com/james-see/ledcostume/pkg/playback"
	"github.com/james-see/ledcostume/pkg/show"
	"github.com/james-see/ledcostume/pkg/timeline"
)

// PreviewFrame is sent to preview clients on every cursor change
type PreviewFrame struct {
	Time  timeline.Milliseconds `json:"t"`
	Final bool                  `json:"final"`
	Rows  []show.RowFrame       `json:"rows"`
}

// PreviewCommand is sent by preview clients: "play", "pause" or "stop"
type PreviewCommand struct {
	Type string `json:"type"`
}

// handlePreview godoc
// @Summary Live scenario preview
// @Description Websocket streaming resolved colors for every costume of a scenario while a clock plays it
// @Tags preview
// @Param path query string true "Scenario path relative to the data directory"
// @Success 101
// @Failure 400 {object} map[string]string
// @Router /api/v1/preview/ws [get]
func (s *Server) handlePreview(c *gin.Context) {
	sh, err := s.loadShow(c.Query("path"))
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		debug.Log("preview", "accept failed: %v", err)
		return
	}
	defer conn.CloseNow()

	err = s.streamPreview(c.Request.Context(), conn, sh)
	if err != nil && !errors.Is(err, context.Canceled) {
		debug.Log("preview", "stream ended: %v", err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// streamPreview owns the clock and session of one connection. Commands are
// read on a separate goroutine and handed over on a channel.
func (s *Server) streamPreview(ctx context.Context, conn *websocket.Conn, sh *show.Show) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmds := make(chan PreviewCommand)
	go func() {
		defer close(cmds)
		for {
			var cmd PreviewCommand
			if err := wsjson.Read(ctx, conn, &cmd); err != nil {
				return
			}
			select {
			case cmds <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()

	clock := playback.NewClock(nil)
	session := playback.NewSession()
	session.UseClock(clock, sh.Duration)

	send := func(final bool) error {
		t := session.Cursor()
		return wsjson.Write(ctx, conn, PreviewFrame{Time: t, Final: final, Rows: sh.Frame(t)})
	}
	if err := send(false); err != nil {
		return err
	}

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	var run uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-cmds:
			if !ok {
				return nil
			}
			switch cmd.Type {
			case "play":
				run = session.Play()
			case "pause":
				session.Pause()
			case "stop":
				session.Stop()
			default:
				continue
			}
			if err := send(false); err != nil {
				return err
			}
		case <-ticker.C:
			tk, ok := clock.Tick(run)
			if !ok {
				continue
			}
			debug.LogEvery(60, "preview", "tick %s", tk.Time)
			if err := send(tk.Final); err != nil {
				return err
			}
		}
	}
}
