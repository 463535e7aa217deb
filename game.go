package main

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"ebiten-forge/assets"
	"ebiten-forge/audio"
	"ebiten-forge/components"
	"ebiten-forge/config"
	"ebiten-forge/data"
	"ebiten-forge/ecs"
	"ebiten-forge/gfx/ebitengfx"
	"ebiten-forge/spawners"
	"ebiten-forge/systems"
)

const tickRate = 1.0 / 60

// Game implements ebiten.Game interface.
type Game struct {
	cfg      config.Engine
	log      *zap.Logger
	gfx      *ebitengfx.Context
	assets   *assets.Manager
	store    *components.Store
	renderer *systems.RenderSystem
	spawner  *spawners.EntitySpawner
	player   *audio.Player
	frame    uint64
	stats    systems.RenderStats
}

// NewGame loads the manifest and templates next to the config file and
// spawns the opening scene
func NewGame(cfg config.Engine, dir string, log *zap.Logger) (*Game, error) {
	ctx := ebitengfx.NewContext(cfg.FramesInFlight, log.Named("gfx"))
	manager := assets.NewManager(ctx,
		assets.WithLogger(log.Named("assets")),
		assets.WithAudioDecoder(audio.DecodeFile))

	face := basicfont.Face7x13
	atlas := assets.GlyphAtlas(face, image.Pt(face.Advance, face.Height), 16, 16)
	if _, err := manager.UploadTexture("glyphs", atlas); err != nil {
		return nil, err
	}

	manifest, err := assets.ReadManifest(filepath.Join(dir, cfg.Manifest))
	if err != nil {
		return nil, err
	}
	if err := manager.LoadManifest(context.Background(), manifest, dir); err != nil {
		return nil, err
	}

	templates := data.NewEntityTemplateManager()
	if err := templates.LoadTemplatesFromDirectory(filepath.Join(dir, "templates")); err != nil {
		return nil, err
	}

	store := components.NewStore(cfg.MaxEntities)
	store.World().AddSystem(&motionSystem{store: store, bounds: mgl32.Vec2{
		float32(cfg.Window.Width), float32(cfg.Window.Height),
	}})

	g := &Game{
		cfg:      cfg,
		log:      log,
		gfx:      ctx,
		assets:   manager,
		store:    store,
		renderer: systems.NewRenderSystem(ctx, manager, log.Named("render")),
		spawner:  spawners.NewEntitySpawner(store, manager, templates, log.Named("spawner")),
		player:   audio.NewPlayer(manager.Audio, log.Named("audio")),
	}
	if err := g.spawnScene(); err != nil {
		return nil, err
	}
	if bgm, err := manager.Audio.GetHandle("bgm"); err == nil {
		if err := g.player.PlayBGM(bgm); err != nil {
			log.Warn("bgm unavailable", zap.Error(err))
		}
	}
	return g, nil
}

func (g *Game) spawnScene() error {
	w, h := float32(g.cfg.Window.Width), float32(g.cfg.Window.Height)
	for x := float32(16); x < w; x += 32 {
		if _, err := g.spawner.Spawn("tile", mgl32.Vec3{x, h - 16, 0}); err != nil {
			return err
		}
	}
	if _, err := g.spawner.Spawn("label", mgl32.Vec3{16, 16, 0}); err != nil {
		return err
	}
	for i := 0; i < 8; i++ {
		if err := g.spawnCrate(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) spawnCrate() error {
	w, h := float32(g.cfg.Window.Width), float32(g.cfg.Window.Height)
	e, err := g.spawner.Spawn("crate", mgl32.Vec3{rand.Float32() * w, rand.Float32() * (h - 64), 0})
	if err != nil {
		return err
	}
	if body, ok := g.store.RigidBody(e); ok {
		body.Velocity = mgl32.Vec3{rand.Float32()*200 - 100, rand.Float32()*200 - 100, 0}
	}
	return nil
}

// Update advances the simulation one tick
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if err := g.spawnCrate(); err != nil {
			g.log.Warn("spawn crate", zap.Error(err))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if crates := g.store.FindByTag("prop"); len(crates) > 0 {
			if err := g.spawner.Despawn(crates[0]); err != nil {
				return eris.Wrap(err, "despawn crate")
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	g.store.Update(tickRate)
	return nil
}

// Draw renders one frame and releases GPU resources the previous frames no
// longer use
func (g *Game) Draw(screen *ebiten.Image) {
	g.frame++
	g.assets.BeginFrame(g.frame)
	g.gfx.BeginFrame(g.frame, screen)
	g.stats = g.renderer.Render(g.store)
	g.gfx.EndFrame()
	g.assets.Collect(g.gfx)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("entities %d  drawn %d  failed %d  pending %d  fps %.0f",
		g.store.Len(), g.stats.Drawn, g.stats.Failed, g.assets.PendingReleases(), ebiten.ActualFPS()),
		8, g.cfg.Window.Height-48)
}

// Layout implements ebiten.Game's Layout.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Window.Width, g.cfg.Window.Height
}

// Close stops audio and frees every asset
func (g *Game) Close() {
	g.player.Close()
	g.assets.Shutdown()
}

// motionSystem integrates rigid body velocity and bounces bodies off the
// window edges
type motionSystem struct {
	store  *components.Store
	bounds mgl32.Vec2
}

func (s *motionSystem) Update(_ *ecs.World, dt float64) {
	step := float32(dt)
	s.store.Each(func(e ecs.Entity, sig ecs.Signature) {
		if !sig.Has(components.RigidBody) || !sig.Has(components.Transform) {
			return
		}
		body, _ := s.store.RigidBody(e)
		tr, _ := s.store.Transform(e)
		tr.Position = tr.Position.Add(body.Velocity.Mul(step))
		for axis := 0; axis < 2; axis++ {
			if tr.Position[axis] < 0 || tr.Position[axis] > s.bounds[axis] {
				body.Velocity[axis] = -body.Velocity[axis]
			}
		}
		if rate := body.Velocity.Len(); rate > 0 {
			tr.Rotation = tr.Rotation.Mul(mgl32.QuatRotate(step*rate/100, mgl32.Vec3{0, 0, 1}))
		}
	})
}
