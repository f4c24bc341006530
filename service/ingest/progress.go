package ingest

import "sync"

// Upload stages, in pipeline order.
const (
	StageReceived   = "received"
	StageExtracting = "extracting"
	StageChunking   = "chunking"
	StageEmbedding  = "embedding"
	StageIndexing   = "indexing"
	StageDone       = "done"
	StageFailed     = "failed"
)

// Progress is one observable snapshot of an in-flight upload.
type Progress struct {
	UploadID string `json:"upload_id"`
	Stage    string `json:"stage"`
	Percent  int    `json:"percent"`
	Error    string `json:"error,omitempty"`
	Final    bool   `json:"-"`
}

type uploadState struct {
	last        Progress
	subscribers []chan Progress
}

// ProgressTracker tracks per-upload progress in memory and fans updates out to
// SSE subscribers. Percent is clamped to be monotonically increasing.
type ProgressTracker struct {
	mu      sync.Mutex
	uploads map[string]*uploadState
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		uploads: make(map[string]*uploadState),
	}
}

func (t *ProgressTracker) Start(uploadID string) {
	t.publish(Progress{UploadID: uploadID, Stage: StageReceived, Percent: 0})
}

func (t *ProgressTracker) Update(uploadID, stage string, percent int) {
	t.publish(Progress{UploadID: uploadID, Stage: stage, Percent: percent})
}

func (t *ProgressTracker) Finish(uploadID string) {
	t.publish(Progress{UploadID: uploadID, Stage: StageDone, Percent: 100, Final: true})
}

func (t *ProgressTracker) Fail(uploadID, reason string) {
	t.publish(Progress{UploadID: uploadID, Stage: StageFailed, Error: reason, Final: true})
}

func (t *ProgressTracker) publish(p Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.uploads[p.UploadID]
	if !ok {
		state = &uploadState{}
		t.uploads[p.UploadID] = state
	}

	// Percent never regresses, even if stages report out of order.
	if p.Percent < state.last.Percent && p.Stage != StageFailed {
		p.Percent = state.last.Percent
	}
	state.last = p

	for _, ch := range state.subscribers {
		select {
		case ch <- p:
		default:
			// 订阅者处理过慢时丢弃中间进度，终态不会丢
		}
	}

	if p.Final {
		for _, ch := range state.subscribers {
			close(ch)
		}
		delete(t.uploads, p.UploadID)
	}
}

// Last returns the most recent snapshot for an upload, if still tracked.
func (t *ProgressTracker) Last(uploadID string) (Progress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.uploads[uploadID]
	if !ok {
		return Progress{}, false
	}
	return state.last, true
}

// Subscribe registers for updates of an upload. The channel replays the
// current snapshot first and closes after the final event. The cancel func
// must be called when the subscriber goes away.
func (t *ProgressTracker) Subscribe(uploadID string) (<-chan Progress, func(), bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.uploads[uploadID]
	if !ok {
		return nil, nil, false
	}

	ch := make(chan Progress, 16)
	ch <- state.last
	state.subscribers = append(state.subscribers, ch)

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		s, ok := t.uploads[uploadID]
		if !ok {
			return
		}
		for i, sub := range s.subscribers {
			if sub == ch {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				break
			}
		}
	}

	return ch, cancel, true
}
