package output

import (
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/sdejongh/sdverify/pkg/models"
)

const purgeTemplate = `{{string . "prefix"}}{{counters . }} {{bar . "[" "#" "#" "." "]"}} {{percent . }} {{string . "file"}}`

// PurgeProgress renders a progress bar while a purge deletes files
type PurgeProgress struct {
	mu      sync.Mutex
	writer  io.Writer
	static  bool
	bar     *pb.ProgressBar
	started bool
}

// NewPurgeProgress creates a progress bar writing to w.
// A static bar only redraws on Update and Finish, for non-terminal writers.
func NewPurgeProgress(w io.Writer, static bool) *PurgeProgress {
	return &PurgeProgress{writer: w, static: static}
}

// Update reports that done of total files have been deleted.
// Its signature matches guard.ProgressFunc.
func (p *PurgeProgress) Update(done, total int, entry models.FileEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		p.bar = pb.ProgressBarTemplate(purgeTemplate).New(total)
		p.bar.SetWriter(p.writer)
		p.bar.Set("prefix", "Deleting ")
		if p.static {
			p.bar.Set(pb.Static, true)
		}
		p.bar.Start()
		p.started = true
	}

	p.bar.SetTotal(int64(total))
	p.bar.SetCurrent(int64(done))
	p.bar.Set("file", entry.Name)
	if p.static {
		p.bar.Write()
	}
}

// Finish completes the bar if it was started
func (p *PurgeProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		p.bar.Set("file", "")
		p.bar.Finish()
	}
}
