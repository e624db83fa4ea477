package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lumen3d/lumen/internal/core/engine"
	"github.com/lumen3d/lumen/internal/core/observability/log"
	"github.com/lumen3d/lumen/internal/core/physics"
	"github.com/lumen3d/lumen/internal/core/render"
	"github.com/lumen3d/lumen/internal/core/scene"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error opening config:", err)
			os.Exit(1)
		}
		cfg, err = engine.LoadYAML(f)
		_ = f.Close()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error loading config:", err)
			os.Exit(1)
		}
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel))

	// The recording device stands in for a GPU backend; the demo runs
	// headless and exercises the full frame sequence.
	device := render.NewRecordingDevice()
	shaders := engine.ShaderSet{
		Shadow:   render.NewShaderID(),
		Geometry: render.NewShaderID(),
	}

	eng := engine.New(cfg, device, nil, shaders, logger)
	if err := buildScene(eng); err != nil {
		fmt.Fprintln(os.Stderr, "error building scene:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	if err := eng.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error starting engine:", err)
		os.Exit(1)
	}

	<-stopCh
	cancel()
	if err := eng.Stop(); err != nil {
		fmt.Fprintln(os.Stderr, "error stopping engine:", err)
		os.Exit(1)
	}
}

// buildScene assembles a small showcase: a static floor slab, a stack of
// falling crates, a kinematic platform, one directional shadow caster, a
// point fill light, an active camera and a skybox.
func buildScene(eng *engine.Engine) error {
	floor := eng.World().CreateEntity()
	if err := eng.Transforms().Add(floor, scene.NewTransform(mgl32.Vec3{0, -0.5, 0})); err != nil {
		return err
	}
	floorMesh := cubeMesh()
	floorMesh.Material.Diffuse = mgl32.Vec3{0.35, 0.35, 0.4}
	if err := eng.Meshes().Add(floor, floorMesh); err != nil {
		return err
	}
	if err := eng.AttachRigidbody(floor, physics.Box(20, 0.5, 20), 0, physics.Static); err != nil {
		return err
	}

	for i := 0; i < 4; i++ {
		crate := eng.World().CreateEntity()
		pos := mgl32.Vec3{float32(i) * 0.4, 2 + float32(i)*1.5, 0}
		if err := eng.Transforms().Add(crate, scene.NewTransform(pos)); err != nil {
			return err
		}
		if err := eng.Meshes().Add(crate, cubeMesh()); err != nil {
			return err
		}
		if err := eng.AttachRigidbody(crate, physics.Box(0.5, 0.5, 0.5), 2, physics.Dynamic); err != nil {
			return err
		}
	}

	platform := eng.World().CreateEntity()
	if err := eng.Transforms().Add(platform, scene.NewTransform(mgl32.Vec3{5, 1, 0})); err != nil {
		return err
	}
	if err := eng.Meshes().Add(platform, cubeMesh()); err != nil {
		return err
	}
	if err := eng.AttachRigidbody(platform, physics.Box(2, 0.25, 2), 0, physics.Kinematic); err != nil {
		return err
	}

	sun := eng.World().CreateEntity()
	sunLight := scene.NewDirectionalLight(mgl32.Vec3{-0.4, -1, -0.3}, mgl32.Vec3{1, 0.96, 0.9}, 1.2)
	sunLight.CastsShadow = true
	if err := eng.Lights().Add(sun, sunLight); err != nil {
		return err
	}

	fill := eng.World().CreateEntity()
	if err := eng.Lights().Add(fill, scene.NewPointLight(mgl32.Vec3{-3, 4, 3}, mgl32.Vec3{0.4, 0.5, 1}, 0.6)); err != nil {
		return err
	}

	camera := eng.World().CreateEntity()
	camTr := scene.NewTransform(mgl32.Vec3{0, 4, 14})
	if err := eng.Transforms().Add(camera, camTr); err != nil {
		return err
	}
	if err := eng.Cameras().Add(camera, scene.NewCamera(16.0/9)); err != nil {
		return err
	}
	if err := scene.ActivateCamera(eng.Cameras(), camera); err != nil {
		return err
	}

	eng.SetSkybox(&render.Skybox{
		CubeMap: scene.NewTextureID(),
		Cube:    cubeMesh(),
	})
	return nil
}

func cubeMesh() scene.Mesh {
	return scene.Mesh{
		Vertices:   scene.NewBufferID(),
		Indices:    scene.NewBufferID(),
		IndexCount: 36,
		Material:   scene.DefaultMaterial(),
	}
}
