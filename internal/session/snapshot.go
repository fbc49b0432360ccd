package session

import (
	"context"

	"genstudio/internal/filecodec"
	"genstudio/internal/studio"
)

// Attachment describes an attached file without its content.
type Attachment struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// Snapshot is an immutable copy of the controller state for rendering.
type Snapshot struct {
	Mode     studio.Mode    `json:"mode"`
	Prompt   string         `json:"prompt"`
	Image    *Attachment    `json:"imageAttachment,omitempty"`
	File     *Attachment    `json:"fileAttachment,omitempty"`
	InFlight bool           `json:"inFlight"`
	Result   *studio.Result `json:"result,omitempty"`
	Version  uint64         `json:"version"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Mode:     c.mode,
		Prompt:   c.prompt,
		Image:    describe(c.image),
		File:     describe(c.file),
		InFlight: c.inFlight,
		Version:  c.version,
	}
	if c.result != nil {
		r := *c.result
		s.Result = &r
	}
	return s
}

// Subscribe emits the current snapshot, then one snapshot per change until
// ctx is done. A slow reader only sees the latest state.
func (c *Controller) Subscribe(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)
		for {
			c.mu.Lock()
			snap := c.snapshotLocked()
			ch := c.changed
			c.mu.Unlock()

			pushSnapshot(out, snap)

			select {
			case <-ctx.Done():
				return
			case <-ch:
			}
		}
	}()
	return out
}

func pushSnapshot(out chan Snapshot, snap Snapshot) {
	select {
	case out <- snap:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- snap:
	default:
	}
}

func describe(f filecodec.File) *Attachment {
	if f == nil {
		return nil
	}
	return &Attachment{Name: f.Name(), MIMEType: f.MIMEType(), Size: f.Size()}
}
