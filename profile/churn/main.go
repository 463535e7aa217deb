// Profiling:
// go build ./profile/churn
// ./churn -mode=cpu
// go tool pprof -http=":8000" -nodefraction=0.001 ./churn cpu.pprof

package main

import (
	"flag"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"

	"ebiten-forge/assets"
	"ebiten-forge/components"
	"ebiten-forge/ecs"
	"ebiten-forge/gfx"
	"ebiten-forge/systems"
)

func main() {
	mode := flag.String("mode", "mem", "profile kind: cpu or mem")
	rounds := flag.Int("rounds", 50, "rounds")
	frames := flag.Int("frames", 200, "frames per round")
	flag.Parse()

	var p interface{ Stop() }
	switch *mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	}
	stats := run(*rounds, *frames, ecs.MaxEntities)
	p.Stop()

	fmt.Printf("drawn %d, failed %d, skipped %d\n", stats.Drawn, stats.Failed, stats.Skipped)
}

// run fills the store, then each frame destroys and recreates a slice of
// entities and swaps a model so handles go stale while the render pass
// keeps running.
func run(rounds, frames, numEntities int) systems.RenderStats {
	var total systems.RenderStats
	rec := gfx.NewRecorder()

	for range rounds {
		manager := assets.NewManager(rec)
		mesh, err := manager.UploadMesh("quad", assets.QuadMesh())
		if err != nil {
			panic(err)
		}
		material, _ := manager.Materials.Add(assets.Material{}, "plain")
		model, _ := manager.Models.Add(assets.Model{Parts: []assets.Part{{Mesh: mesh, Material: material}}}, "m")

		store := components.NewStore(numEntities)
		renderer := systems.NewRenderSystem(rec, manager, nil)
		white := mgl32.Vec4{1, 1, 1, 1}
		live := make([]ecs.Entity, 0, numEntities)

		spawn := func(i int) {
			e, err := store.CreateEntity()
			if err != nil {
				panic(err)
			}
			_ = store.AddTransform(e, components.NewTransformComponent(mgl32.Vec3{float32(i), 0, 0}))
			_ = store.AddModel(e, components.NewModelComponent(model, white))
			live = append(live, e)
		}
		for i := range numEntities {
			spawn(i)
		}

		for frame := range frames {
			manager.BeginFrame(uint64(frame))
			churn := numEntities / 10
			for _, e := range live[:churn] {
				_ = store.DestroyEntity(e)
			}
			live = live[churn:]
			for i := range churn {
				spawn(i)
			}

			if frame%20 == 0 {
				_ = manager.Models.Remove(model)
				model, _ = manager.Models.Add(assets.Model{Parts: []assets.Part{{Mesh: mesh, Material: material}}}, "m")
			}

			rec.Reset()
			stats := renderer.Render(store)
			total.Drawn += stats.Drawn
			total.Failed += stats.Failed
			total.Skipped += stats.Skipped
			rec.Complete(uint64(frame))
			manager.Collect(rec)
		}
		manager.Shutdown()
	}
	return total
}
