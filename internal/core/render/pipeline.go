package render

import (
	"github.com/cespare/xxhash/v2"
)

// PipelineID identifies a baked pipeline state object. IDs are content
// hashes, so identical states resolve to the same pipeline across passes.
type PipelineID uint64

// PipelineState is the raster state a draw is issued under.
type PipelineState struct {
	Shader       ShaderID
	Pass         PassKind
	Cull         CullMode
	DepthCompare CompareOp
}

// PipelineCache deduplicates pipeline states. Passes look states up per draw;
// the cache keeps creation out of the hot path by hashing instead of
// allocating.
type PipelineCache struct {
	states map[PipelineID]PipelineState
}

func NewPipelineCache() *PipelineCache {
	return &PipelineCache{states: make(map[PipelineID]PipelineState, 8)}
}

// Lookup returns the stable ID for st, registering it on first use.
func (c *PipelineCache) Lookup(st PipelineState) PipelineID {
	d := xxhash.New()
	_, _ = d.Write(st.Shader[:])
	_, _ = d.Write([]byte{byte(st.Pass), byte(st.Cull), byte(st.DepthCompare)})
	id := PipelineID(d.Sum64())
	if _, ok := c.states[id]; !ok {
		c.states[id] = st
	}
	return id
}

// State returns the registered state for an ID.
func (c *PipelineCache) State(id PipelineID) (PipelineState, bool) {
	st, ok := c.states[id]
	return st, ok
}

// Size returns the number of distinct pipeline states seen so far.
func (c *PipelineCache) Size() int {
	return len(c.states)
}
