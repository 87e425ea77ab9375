package program

import "time"

// BasicExecutionSpan is the timing of a single sub-execution. It may include
// some classical overhead.
type BasicExecutionSpan struct {
	Start time.Time `json:"start"`
	Stop  time.Time `json:"stop"`
}

// Duration returns Stop - Start.
func (s BasicExecutionSpan) Duration() time.Duration { return s.Stop.Sub(s.Start) }

// ChunkPart says how many elements of one program item ran in a chunk.
type ChunkPart struct {
	IdxItem int `json:"idx_item"`
	Size    int `json:"size"`
}

// ChunkSpan is the UTC timing of one execution chunk and the item parts it
// contained.
type ChunkSpan struct {
	Start time.Time   `json:"start"`
	Stop  time.Time   `json:"stop"`
	Parts []ChunkPart `json:"parts"`
}

// Duration returns Stop - Start.
func (s ChunkSpan) Duration() time.Duration { return s.Stop.Sub(s.Start) }

// ItemSizes sums the executed elements per item index over spans.
func ItemSizes(spans []ChunkSpan) map[int]int {
	out := make(map[int]int)
	for _, s := range spans {
		for _, p := range s.Parts {
			out[p.IdxItem] += p.Size
		}
	}
	return out
}
