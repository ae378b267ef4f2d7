package testsupport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
)

// FakeTrack is one entry of the fake player's track-list.
type FakeTrack struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Lang     string `json:"lang,omitempty"`
	Title    string `json:"title,omitempty"`
	Codec    string `json:"codec,omitempty"`
	Default  bool   `json:"default"`
	Forced   bool   `json:"forced"`
	Selected bool   `json:"selected"`
	Channels int    `json:"demux-channel-count,omitempty"`
}

// FakeMPV is a minimal mpv JSON IPC server listening on a Unix socket.
type FakeMPV struct {
	Socket string

	t        testing.TB
	listener net.Listener

	mu       sync.Mutex
	tracks   []FakeTrack
	commands [][]any
	conns    []net.Conn
	failures map[string]string
}

// NewFakeMPV starts a fake player serving tracks. It stops on test cleanup.
func NewFakeMPV(t testing.TB, tracks ...FakeTrack) *FakeMPV {
	t.Helper()

	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatalf("mkdir socket dir: %v", err)
	}
	socket := filepath.Join(dir, "mpv.sock")
	listener, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("listen %s: %v", socket, err)
	}

	f := &FakeMPV{
		Socket:   socket,
		t:        t,
		listener: listener,
		tracks:   append([]FakeTrack(nil), tracks...),
		failures: make(map[string]string),
	}
	go f.serve()
	t.Cleanup(func() {
		_ = listener.Close()
		f.mu.Lock()
		for _, c := range f.conns {
			_ = c.Close()
		}
		f.mu.Unlock()
		_ = os.RemoveAll(dir)
	})
	return f
}

// FailCommand makes every command named name reply with mpv error text msg.
func (f *FakeMPV) FailCommand(name, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[name] = msg
}

// Commands returns every command received so far.
func (f *FakeMPV) Commands() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]any, len(f.commands))
	copy(out, f.commands)
	return out
}

// SetCommands returns the set_property commands received so far as
// "name=value" strings.
func (f *FakeMPV) SetCommands() []string {
	var out []string
	for _, cmd := range f.Commands() {
		if len(cmd) == 3 && cmd[0] == "set_property" {
			out = append(out, fmt.Sprintf("%v=%v", cmd[1], cmd[2]))
		}
	}
	return out
}

// Tracks returns the current track-list state.
func (f *FakeMPV) Tracks() []FakeTrack {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeTrack(nil), f.tracks...)
}

// LoadTracks replaces the track-list and notifies observers, as mpv does when
// a new file starts.
func (f *FakeMPV) LoadTracks(tracks ...FakeTrack) {
	f.mu.Lock()
	f.tracks = append([]FakeTrack(nil), tracks...)
	f.mu.Unlock()
	f.broadcastTrackList()
}

// Emit sends an arbitrary event line to every client.
func (f *FakeMPV) Emit(event map[string]any) {
	line, err := json.Marshal(event)
	if err != nil {
		f.t.Errorf("marshal event: %v", err)
		return
	}
	f.mu.Lock()
	conns := append([]net.Conn(nil), f.conns...)
	f.mu.Unlock()
	for _, c := range conns {
		_, _ = c.Write(append(line, '\n'))
	}
}

func (f *FakeMPV) serve() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.mu.Unlock()
		go f.handle(conn)
	}
}

func (f *FakeMPV) handle(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	var writeMu sync.Mutex
	write := func(v any) {
		line, _ := json.Marshal(v)
		writeMu.Lock()
		defer writeMu.Unlock()
		_, _ = conn.Write(append(line, '\n'))
	}
	for scanner.Scan() {
		var req struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil || len(req.Command) == 0 {
			continue
		}
		data, errText, observe := f.execute(req.Command)
		write(map[string]any{"request_id": req.RequestID, "error": errText, "data": data})
		if observe {
			f.broadcastTrackList()
		}
	}
}

func (f *FakeMPV) execute(cmd []any) (any, string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)

	name := fmt.Sprint(cmd[0])
	if msg, ok := f.failures[name]; ok {
		return nil, msg, false
	}
	switch name {
	case "get_property":
		if len(cmd) < 2 {
			return nil, "invalid parameter", false
		}
		switch cmd[1] {
		case "track-list":
			return append([]FakeTrack(nil), f.tracks...), "success", false
		case "vid", "aid", "sid":
			for _, t := range f.tracks {
				if t.Type == kindForProperty(fmt.Sprint(cmd[1])) && t.Selected {
					return t.ID, "success", false
				}
			}
			return false, "success", false
		}
		return nil, "property unavailable", false
	case "set_property":
		if len(cmd) < 3 {
			return nil, "invalid parameter", false
		}
		typ := kindForProperty(fmt.Sprint(cmd[1]))
		if typ == "" {
			return nil, "property not found", false
		}
		value := fmt.Sprint(cmd[2])
		if value == "auto" {
			return nil, "success", false
		}
		id, _ := strconv.Atoi(value)
		for i := range f.tracks {
			if f.tracks[i].Type == typ {
				f.tracks[i].Selected = value != "no" && f.tracks[i].ID == id
			}
		}
		return nil, "success", false
	case "observe_property":
		return nil, "success", true
	case "sub-add":
		if len(cmd) < 2 {
			return nil, "invalid parameter", false
		}
		next := 1
		for _, t := range f.tracks {
			if t.Type == "sub" && t.ID >= next {
				next = t.ID + 1
			}
		}
		added := FakeTrack{ID: next, Type: "sub"}
		if len(cmd) > 3 {
			added.Title = fmt.Sprint(cmd[3])
		}
		if len(cmd) > 4 {
			added.Lang = fmt.Sprint(cmd[4])
		}
		f.tracks = append(f.tracks, added)
		return nil, "success", false
	}
	return nil, "invalid parameter", false
}

func (f *FakeMPV) broadcastTrackList() {
	f.mu.Lock()
	tracks := append([]FakeTrack(nil), f.tracks...)
	f.mu.Unlock()
	f.Emit(map[string]any{"event": "property-change", "id": 1, "name": "track-list", "data": tracks})
}

func kindForProperty(name string) string {
	switch name {
	case "vid":
		return "video"
	case "aid":
		return "audio"
	case "sid":
		return "sub"
	}
	return ""
}
