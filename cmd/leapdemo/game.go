package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/leap/common"
	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
	"github.com/milk9111/leap/ecs/entity"
	"github.com/milk9111/leap/ecs/system"
	"github.com/milk9111/leap/locale"
	"github.com/milk9111/leap/prefabs"
)

const (
	baseWidth  = 640
	baseHeight = 400

	walkSpeed = 4 * common.PixelsPerUnit
)

var scenePrefabs = []string{"floor.yaml", "table.yaml", "leaper.yaml"}

type Game struct {
	world     *ecs.World
	scheduler *ecs.Scheduler

	physics *system.PhysicsSystem
	actions *system.ActionsSystem
	popups  *system.PopupSystem
	round   *system.RoundSystem

	leaper       ecs.Entity
	physicsDebug bool
	face         ebtext.Face
	reloads      <-chan string
	log          *zap.Logger
}

func NewGame(reloads <-chan string, physicsDebug bool, log *zap.Logger) (*Game, error) {
	protos, err := prefabs.LoadActionPrototypes()
	if err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	physics := system.NewPhysicsSystem(system.DefaultPhysicsConfig(), log)
	actions := system.NewActionsSystem(protos, log)
	gravity := system.NewGravitySystem()
	doAfter := system.NewDoAfterSystem(log)
	stamina := system.NewStaminaSystem()
	popups := system.NewPopupSystem()
	leap := system.NewLeapSystem(w, system.LeapDeps{
		Physics: physics,
		Gravity: gravity,
		Stamina: stamina,
		DoAfter: doAfter,
		Popups:  popups,
		Actions: actions,
	}, log)

	g := &Game{
		world:        w,
		scheduler:    ecs.NewScheduler(common.FixedDelta, actions, physics, gravity, doAfter, stamina, leap, popups),
		physics:      physics,
		actions:      actions,
		popups:       popups,
		round:        system.NewRoundSystem(log),
		physicsDebug: physicsDebug,
		face:         ebtext.NewGoXFace(basicfont.Face7x13),
		reloads:      reloads,
		log:          log,
	}
	if err := g.spawnScene(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) spawnScene() error {
	for _, name := range scenePrefabs {
		e, err := entity.BuildEntity(g.world, name)
		if err != nil {
			return err
		}
		if ecs.Has(g.world, e, component.PlayerTagComponent.Kind()) {
			g.leaper = e
		}
	}
	return nil
}

// restart ends the round and rebuilds the scene from the prefabs.
func (g *Game) restart() error {
	g.round.Restart(g.world)
	for _, e := range ecs.Entities(g.world) {
		ecs.DestroyEntity(g.world, e)
	}
	return g.spawnScene()
}

func (g *Game) Update() error {
	g.applyReloads()

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.restart(); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.physicsDebug = !g.physicsDebug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.leap()
	}
	g.walk()

	g.scheduler.Update(g.world)
	return nil
}

func (g *Game) leap() {
	action, ok := g.actions.ActionByPrototype(g.world, g.leaper, component.DefaultLeapAction)
	if !ok || g.actions.PerformAction(g.world, g.leaper, action) {
		return
	}
	leap, ok := ecs.Get(g.world, g.leaper, component.LeapComponent.Kind())
	st, hasStamina := ecs.Get(g.world, g.leaper, component.StaminaComponent.Kind())
	if ok && hasStamina && !leap.Jumping && st.Current < float64(leap.Profile.StaminaCost) {
		g.popups.PopupEntity(g.world, locale.Get("popup-not-enough-stamina"), g.leaper, component.PopupSmall)
	}
}

func (g *Game) walk() {
	leap, ok := ecs.Get(g.world, g.leaper, component.LeapComponent.Kind())
	if ok && leap.Jumping {
		return
	}
	vx := 0.0
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		vx -= walkSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		vx += walkSpeed
	}
	_, vy := g.physics.LinearVelocity(g.leaper)
	g.physics.SetLinearVelocity(g.world, g.leaper, vx, vy)
}

// applyReloads drains prefab change notifications without blocking.
func (g *Game) applyReloads() {
	for {
		select {
		case name := <-g.reloads:
			if name != "leaper.yaml" {
				continue
			}
			if err := entity.ReloadLeapProfile(g.world, g.leaper, name); err != nil {
				g.log.Warn("reload leap profile", zap.Error(err))
				continue
			}
			g.log.Info("reloaded leap profile", zap.String("prefab", name))
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.NRGBA{R: 0x18, G: 0x18, B: 0x20, A: 0xff})
	if g.physicsDebug {
		drawPhysicsDebug(g.physics.Space(), screen)
	}
	g.drawPopups(screen)
	ebitenutil.DebugPrintAt(screen, g.status(), 8, 8)
}

func (g *Game) drawPopups(screen *ebiten.Image) {
	ecs.ForEach(g.world, component.PopupComponent.Kind(), func(_ ecs.Entity, p *component.Popup) {
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(p.X, p.Y-p.Offset)
		op.PrimaryAlign = ebtext.AlignCenter
		op.ColorScale.ScaleWithColor(color.White)
		ebtext.Draw(screen, p.Message, g.face, op)
	})
}

func (g *Game) status() string {
	w := g.world
	s := fmt.Sprintf("Round %d    FPS %.0f\n", g.round.Round(), ebiten.ActualFPS())
	if st, ok := ecs.Get(w, g.leaper, component.StaminaComponent.Kind()); ok {
		s += fmt.Sprintf("Stamina: %.0f/%.0f\n", st.Current, st.Max)
	}
	if leap, ok := ecs.Get(w, g.leaper, component.LeapComponent.Kind()); ok {
		s += fmt.Sprintf("Jumping: %v\nCheckColliding: %v\nSuppressed: %d\n", leap.Jumping, leap.CheckColliding, len(leap.DisabledFixtureMasks))
	}
	if gc, ok := ecs.Get(w, g.leaper, component.GroundContactComponent.Kind()); ok {
		s += fmt.Sprintf("Grounded: %v\n", gc.Grounded)
	}
	if e, ok := g.actions.ActionByPrototype(w, g.leaper, component.DefaultLeapAction); ok {
		if a, ok := ecs.Get(w, e, component.ActionComponent.Kind()); ok {
			s += fmt.Sprintf("%s: %s (%.1fs)\n", a.Name, a.Description, a.Cooldown)
		}
	}
	return s + "Space: leap  Arrows: walk  R: restart  F1: shapes"
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
