// Package journal persists the dashboard's offline outbox so queued
// actions survive a restart of the client.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/seaguardian/seaguardian/internal/model"
)

const (
	fileMode = 0644
	dirMode  = 0755
)

// Action kinds stored in the journal.
const (
	KindSOS   = "sos"
	KindAck   = "ack"
	KindCatch = "catch"
)

// Action is one queued mutation as written to disk.
type Action struct {
	Kind          string             `json:"kind"`
	VesselID      string             `json:"vessel_id,omitempty"`
	AlertID       int64              `json:"alert_id,omitempty"`
	Record        *model.CatchRecord `json:"record,omitempty"`
	ProvisionalID int64              `json:"provisional_id,omitempty"`
	At            time.Time          `json:"at"`
}

type entry struct {
	Seq    uint64 `json:"seq"`
	Action Action `json:"action"`
}

// Journal is an append-only file of actions, one JSON entry per line.
// Progress is tracked in a ".commit" sidecar holding the highest
// sequence number that no longer needs replaying.
type Journal struct {
	mu         sync.Mutex
	path       string
	commitPath string
	file       *os.File
	nextSeq    uint64
	committed  uint64
}

// Open creates or opens the journal at path. Committed entries are
// compacted away and a partially written trailing line is ignored.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("journal: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, fmt.Errorf("journal: mkdir: %w", err)
	}

	commitPath := path + ".commit"
	committed, err := readCommitted(commitPath)
	if err != nil {
		return nil, err
	}

	pending, maxSeq, err := scan(path, committed)
	if err != nil {
		return nil, err
	}
	if err := rewrite(path, pending); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}

	return &Journal{
		path:       path,
		commitPath: commitPath,
		file:       f,
		nextSeq:    max(maxSeq, committed) + 1,
		committed:  committed,
	}, nil
}

// Append durably writes a and returns its sequence number.
func (j *Journal) Append(a Action) (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return 0, errors.New("journal: closed")
	}

	e := entry{Seq: j.nextSeq, Action: a}
	line, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("journal: marshal entry: %w", err)
	}
	line = append(line, '\n')

	if _, err := j.file.Write(line); err != nil {
		return 0, fmt.Errorf("journal: write entry: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return 0, fmt.Errorf("journal: sync entry: %w", err)
	}
	j.nextSeq++
	return e.Seq, nil
}

// Commit marks every entry up to and including seq as done.
func (j *Journal) Commit(seq uint64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if seq <= j.committed {
		return nil
	}
	if err := writeCommitted(j.commitPath, seq); err != nil {
		return err
	}
	j.committed = seq
	return nil
}

// Committed returns the highest committed sequence number.
func (j *Journal) Committed() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.committed
}

// Replay calls fn for each uncommitted entry in sequence order.
func (j *Journal) Replay(fn func(seq uint64, a Action) error) error {
	if fn == nil {
		return errors.New("journal: replay callback is nil")
	}

	j.mu.Lock()
	path, committed := j.path, j.committed
	j.mu.Unlock()

	pending, _, err := scan(path, committed)
	if err != nil {
		return err
	}
	for _, e := range pending {
		if err := fn(e.Seq, e.Action); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the journal file. Further appends fail.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// scan reads the entries after committed and the highest sequence seen.
// Reading stops at the first partial or malformed line.
func scan(path string, committed uint64) ([]entry, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("journal: open for scan: %w", err)
	}
	defer f.Close()

	var (
		pending []entry
		maxSeq  uint64
	)
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("journal: scan read: %w", err)
		}
		if len(line) == 0 || line[len(line)-1] != '\n' {
			return pending, maxSeq, nil
		}

		var e entry
		if json.Unmarshal(line, &e) != nil {
			return pending, maxSeq, nil
		}
		maxSeq = max(maxSeq, e.Seq)
		if e.Seq > committed {
			pending = append(pending, e)
		}
	}
}

// rewrite atomically replaces the journal with the given entries.
func rewrite(path string, entries []entry) error {
	tmp := path + ".compact"
	var b strings.Builder
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("journal: marshal entry: %w", err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return writeAtomic(tmp, path, []byte(b.String()))
}

func readCommitted(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("journal: read commit file: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0, nil
	}
	seq, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("journal: parse commit seq: %w", err)
	}
	return seq, nil
}

func writeCommitted(path string, seq uint64) error {
	return writeAtomic(path+".tmp", path, []byte(strconv.FormatUint(seq, 10)+"\n"))
}

// writeAtomic writes data to tmp, syncs it and renames it over path.
func writeAtomic(tmp, path string, data []byte) error {
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("journal: open %s: %w", filepath.Base(tmp), err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("journal: write %s: %w", filepath.Base(tmp), err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("journal: sync %s: %w", filepath.Base(tmp), err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("journal: close %s: %w", filepath.Base(tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("journal: rename %s: %w", filepath.Base(tmp), err)
	}
	return nil
}
