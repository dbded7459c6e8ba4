// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package scorer

// Tabular is a reference, history-independent LabelScorer that serves
// precomputed per-frame, per-class scores. It exists for tests and for
// small offline experiments, the way a sequence labeler's decode-time
// model wraps a precomputed emission matrix.
type Tabular struct {
	caps   Capabilities
	frames [][]Score
	pos    int
}

// NewTabular builds a Tabular scorer over frames, a [time][class]
// score matrix (costs, i.e. negated log-probabilities).
func NewTabular(frames [][]Score, caps Capabilities) *Tabular {
	caps.NumClasses = 0
	if len(frames) > 0 {
		caps.NumClasses = len(frames[0])
	}
	return &Tabular{caps: caps, frames: frames}
}

func (t *Tabular) Capabilities() Capabilities { return t.caps }

func (t *Tabular) StartHistory() History { return NoHistory }

func (t *Tabular) ExtendHistory(h History, _ int32, _ int, _ bool) History { return h }

func (t *Tabular) ReducedHash(h History, k int) uint64 {
	if k == 0 {
		return 0
	}
	return uint64(h)
}

func (t *Tabular) GetScores(_ History, isLoop bool) ([]Score, error) {
	if t.pos >= len(t.frames) {
		out := make([]Score, t.caps.NumClasses)
		for i := range out {
			out[i] = LogZero
		}
		return out, nil
	}
	row := t.frames[t.pos]
	out := make([]Score, len(row))
	copy(out, row)
	return out, nil
}

func (t *Tabular) GetSegmentScores(_ History, _ int32, _ int) ([]SegmentScore, error) {
	return nil, nil
}

func (t *Tabular) BufferFilled() bool { return t.pos < len(t.frames) }
func (t *Tabular) ReachEnd() bool     { return t.pos >= len(t.frames)-1 }

func (t *Tabular) IncreaseDecodeStep() { t.pos++ }

func (t *Tabular) CleanUpBeforeExtension(int) {}

// NumFrames reports the number of scored frames.
func (t *Tabular) NumFrames() int { return len(t.frames) }
