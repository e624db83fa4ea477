package render

import (
	"github.com/google/uuid"

	"github.com/lumen3d/lumen/internal/core/scene"
)

type CommandKind uint8

const (
	CmdBeginPass CommandKind = iota
	CmdBindPipeline
	CmdBindShadowUniforms
	CmdBindGeometryUniforms
	CmdBindMaterialTexture
	CmdBindShadowMap
	CmdDraw
	CmdEndPass
	CmdPresent
	CmdReleaseDepthTarget
)

// Command is one recorded device call with the arguments relevant to its kind.
type Command struct {
	Kind       CommandKind
	Pass       PassDesc
	Pipeline   PipelineID
	Shadow     ShadowUniforms
	Geometry   GeometryUniforms
	Texture    scene.TextureID
	Slot       int
	Target     DepthTargetID
	Vertices   scene.BufferID
	Indices    scene.BufferID
	IndexCount int
}

// RecordingDevice captures the command stream instead of submitting it to
// hardware. It backs headless runs and lets tests assert on exact submission
// order.
type RecordingDevice struct {
	commands []Command

	// DepthTargetErr, when set, makes CreateDepthTarget fail; used to test
	// the fatal resource-exhaustion path.
	DepthTargetErr error

	depthTargets int
}

var _ Device = (*RecordingDevice)(nil)

func NewRecordingDevice() *RecordingDevice {
	return &RecordingDevice{}
}

func (d *RecordingDevice) CreateDepthTarget(size int) (DepthTargetID, error) {
	if d.DepthTargetErr != nil {
		return DepthTargetID{}, d.DepthTargetErr
	}
	d.depthTargets++
	return DepthTargetID(uuid.New()), nil
}

func (d *RecordingDevice) ReleaseDepthTarget(id DepthTargetID) {
	d.depthTargets--
	d.commands = append(d.commands, Command{Kind: CmdReleaseDepthTarget, Target: id})
}

func (d *RecordingDevice) BeginPass(desc PassDesc) {
	d.commands = append(d.commands, Command{Kind: CmdBeginPass, Pass: desc})
}

func (d *RecordingDevice) BindPipeline(id PipelineID) {
	d.commands = append(d.commands, Command{Kind: CmdBindPipeline, Pipeline: id})
}

func (d *RecordingDevice) BindShadowUniforms(u ShadowUniforms) {
	d.commands = append(d.commands, Command{Kind: CmdBindShadowUniforms, Shadow: u})
}

func (d *RecordingDevice) BindGeometryUniforms(u GeometryUniforms) {
	d.commands = append(d.commands, Command{Kind: CmdBindGeometryUniforms, Geometry: u})
}

func (d *RecordingDevice) BindMaterialTexture(tex scene.TextureID) {
	d.commands = append(d.commands, Command{Kind: CmdBindMaterialTexture, Texture: tex})
}

func (d *RecordingDevice) BindShadowMap(slot int, target DepthTargetID) {
	d.commands = append(d.commands, Command{Kind: CmdBindShadowMap, Slot: slot, Target: target})
}

func (d *RecordingDevice) Draw(vertices, indices scene.BufferID, indexCount int) {
	d.commands = append(d.commands, Command{
		Kind:       CmdDraw,
		Vertices:   vertices,
		Indices:    indices,
		IndexCount: indexCount,
	})
}

func (d *RecordingDevice) EndPass() {
	d.commands = append(d.commands, Command{Kind: CmdEndPass})
}

func (d *RecordingDevice) Present() {
	d.commands = append(d.commands, Command{Kind: CmdPresent})
}

// Commands returns the recorded stream in submission order.
func (d *RecordingDevice) Commands() []Command {
	return d.commands
}

// Reset drops the recorded stream, keeping allocated targets alive.
func (d *RecordingDevice) Reset() {
	d.commands = d.commands[:0]
}

// DepthTargetCount returns how many depth targets are currently allocated.
func (d *RecordingDevice) DepthTargetCount() int {
	return d.depthTargets
}

// CountKind returns the number of recorded commands of the given kind.
func (d *RecordingDevice) CountKind(kind CommandKind) int {
	n := 0
	for _, c := range d.commands {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
