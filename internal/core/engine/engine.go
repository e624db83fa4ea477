// Package engine drives the per-frame sequence: poll input, step physics,
// sync transforms, shadow pass, geometry pass, present. Stages run strictly
// in order on a single goroutine; a frame, once started, always completes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/lumen3d/lumen/internal/core/ecs"
	"github.com/lumen3d/lumen/internal/core/observability/log"
	"github.com/lumen3d/lumen/internal/core/physics"
	"github.com/lumen3d/lumen/internal/core/render"
	"github.com/lumen3d/lumen/internal/core/scene"
	transformsync "github.com/lumen3d/lumen/internal/core/systems/sync"
)

// ShaderSet carries the opaque handles of the pass shaders, compiled by the
// external shader subsystem.
type ShaderSet struct {
	Shadow   render.ShaderID
	Geometry render.ShaderID
}

// FrameStatus is the single per-frame result surfaced by the orchestrator.
// Err reports a skipped frame (the next frame proceeds normally); Fatal marks
// conditions the pipeline cannot recover from, which stop the loop.
type FrameStatus struct {
	Frame uint64
	Draws int
	Err   error
	Fatal bool
}

// Engine owns the ECS world, the physics world and the render passes, and
// advances them one frame at a time.
type Engine struct {
	cfg    Config
	log    log.Log
	device render.Device
	poller InputPoller

	world   *ecs.World
	physics *physics.World
	sync    *transformsync.System

	shadowPass   *render.ShadowPass
	geometryPass *render.GeometryPass

	transforms *ecs.Store[scene.Transform]
	meshes     *ecs.Store[scene.Mesh]
	models     *ecs.Store[scene.Model]
	cameras    *ecs.Store[scene.Camera]
	lights     *ecs.Store[scene.Light]
	bodies     *ecs.Store[scene.Rigidbody]

	frame     uint64
	lastInput InputState

	group  *errgroup.Group
	cancel context.CancelFunc
}

// New wires an engine together. The device and shaders come from the external
// GPU and shader subsystems; ownership of every store is explicit and flows
// from here, never through globals.
func New(cfg Config, device render.Device, poller InputPoller, shaders ShaderSet, logger log.Log) *Engine {
	if poller == nil {
		poller = NopPoller{}
	}
	if logger == nil {
		logger = log.Nop()
	}

	world := ecs.NewWorld()
	pw := physics.NewWorld(
		mgl32.Vec3{cfg.Gravity[0], cfg.Gravity[1], cfg.Gravity[2]},
		cfg.FixedSubstep,
		cfg.MaxSubsteps,
	)
	if cfg.Ground.Enabled {
		pw.SetGroundPlane(cfg.Ground.Height, cfg.Ground.Restitution)
	}

	cache := render.NewPipelineCache()
	clear := mgl32.Vec4{cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], cfg.ClearColor[3]}

	e := &Engine{
		cfg:          cfg,
		log:          logger,
		device:       device,
		poller:       poller,
		world:        world,
		physics:      pw,
		sync:         transformsync.New(world, pw),
		shadowPass:   render.NewShadowPass(device, cache, shaders.Shadow, cfg.ShadowMapSize),
		geometryPass: render.NewGeometryPass(device, cache, shaders.Geometry, clear),
		transforms:   ecs.GetStore[scene.Transform](world),
		meshes:       ecs.GetStore[scene.Mesh](world),
		models:       ecs.GetStore[scene.Model](world),
		cameras:      ecs.GetStore[scene.Camera](world),
		lights:       ecs.GetStore[scene.Light](world),
		bodies:       ecs.GetStore[scene.Rigidbody](world),
	}

	// Entity destruction must free simulation and GPU resources in the same
	// breath: no dangling bodies, no orphaned depth targets.
	e.bodies.OnRemove(func(ent ecs.Entity, rb *scene.Rigidbody) {
		if err := pw.RemoveBody(rb.Handle); err != nil {
			logger.Warn("rigidbody removal with dead physics handle",
				log.Uint64("entity", uint64(ent.ID)), log.Err(err))
		}
	})
	e.lights.OnRemove(func(ent ecs.Entity, _ *scene.Light) {
		e.shadowPass.ReleaseLight(ent)
	})

	return e
}

// World returns the entity manager.
func (e *Engine) World() *ecs.World { return e.world }

// Physics returns the physics world adapter.
func (e *Engine) Physics() *physics.World { return e.physics }

func (e *Engine) Transforms() *ecs.Store[scene.Transform]  { return e.transforms }
func (e *Engine) Meshes() *ecs.Store[scene.Mesh]           { return e.meshes }
func (e *Engine) Models() *ecs.Store[scene.Model]          { return e.models }
func (e *Engine) Cameras() *ecs.Store[scene.Camera]        { return e.cameras }
func (e *Engine) Lights() *ecs.Store[scene.Light]          { return e.lights }
func (e *Engine) Rigidbodies() *ecs.Store[scene.Rigidbody] { return e.bodies }

// SetSkybox installs the optional skybox on the geometry pass.
func (e *Engine) SetSkybox(sb *render.Skybox) {
	e.geometryPass.SetSkybox(sb)
}

// Input returns the snapshot polled at the start of the current frame.
func (e *Engine) Input() InputState { return e.lastInput }

// AttachRigidbody creates a physics body matching the entity's current
// transform and attaches the pairing Rigidbody component, keeping the 1:1
// body/transform invariant in one place.
func (e *Engine) AttachRigidbody(ent ecs.Entity, shape physics.Shape, mass float32, kind physics.BodyKind) error {
	tr, ok := e.transforms.Get(ent)
	if !ok {
		return fmt.Errorf("engine: entity %d has no transform to pair with", ent.ID)
	}
	handle, err := e.physics.AddBody(shape, mass, physics.Pose{Pos: tr.Pos, Rot: tr.Rot}, kind)
	if err != nil {
		return err
	}
	rb := scene.Rigidbody{Mass: mass, Shape: shape, Kind: kind, Handle: handle}
	if err := e.bodies.Add(ent, rb); err != nil {
		// Roll back so the simulation does not accrete an unpaired body.
		_ = e.physics.RemoveBody(handle)
		return err
	}
	return nil
}

// RunFrame advances exactly one frame. A physics step failure skips the sync
// and render stages for this frame only; resource exhaustion in the shadow
// pass and dangling-handle programmer errors are fatal.
func (e *Engine) RunFrame(dt float32) FrameStatus {
	e.frame++
	status := FrameStatus{Frame: e.frame}

	e.lastInput = e.poller.Poll()

	if err := e.physics.Step(dt); err != nil {
		status.Err = fmt.Errorf("physics step: %w", err)
		e.log.Error("frame aborted at physics step",
			log.Uint64("frame", e.frame), log.Float32("dt", dt), log.Err(err))
		return status
	}

	if err := e.sync.Apply(); err != nil {
		status.Err = fmt.Errorf("transform sync: %w", err)
		status.Fatal = true
		e.log.Error("transform sync failed", log.Uint64("frame", e.frame), log.Err(err))
		return status
	}

	bindings, err := e.shadowPass.Render(e.world, e.lights, e.transforms, e.meshes, e.models)
	if err != nil {
		status.Err = fmt.Errorf("shadow pass: %w", err)
		status.Fatal = true
		e.log.Error("shadow pass failed", log.Uint64("frame", e.frame), log.Err(err))
		return status
	}

	draws, err := e.geometryPass.Render(e.world, e.cameras, e.transforms, e.meshes, e.models, e.lights, bindings)
	if err != nil {
		status.Err = fmt.Errorf("geometry pass: %w", err)
		status.Fatal = true
		e.log.Error("geometry pass failed", log.Uint64("frame", e.frame), log.Err(err))
		return status
	}
	status.Draws = draws

	e.device.Present()

	e.log.Debug("frame complete",
		log.Uint64("frame", e.frame),
		log.Int("draws", draws),
		log.Int("bodies", e.physics.BodyCount()),
		log.Int("entities", e.world.EntityCount()))
	return status
}

// Start launches the frame loop on its own goroutine. Shutdown is observed at
// frame boundaries only.
func (e *Engine) Start(ctx context.Context) error {
	if e.group != nil {
		return errors.New("engine: already running")
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	group, ctx := errgroup.WithContext(ctx)
	e.group = group
	group.Go(func() error {
		return e.loop(ctx)
	})
	e.log.Info("engine started", log.Int("target_fps", e.cfg.TargetFPS))
	return nil
}

// Stop signals shutdown and waits for the in-flight frame to complete.
func (e *Engine) Stop() error {
	if e.group == nil {
		return nil
	}
	e.cancel()
	err := e.group.Wait()
	e.group = nil
	e.cancel = nil
	e.log.Info("engine stopped", log.Uint64("frames", e.frame))
	return err
}

func (e *Engine) loop(ctx context.Context) error {
	interval := time.Second / time.Duration(e.cfg.TargetFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := float32(now.Sub(last).Seconds())
			last = now
			status := e.RunFrame(dt)
			if status.Fatal {
				return status.Err
			}
			// Non-fatal frame errors were logged; the next tick retries.
		}
	}
}
