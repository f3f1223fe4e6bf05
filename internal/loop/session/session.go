// Package session implements the dot game: spawning, falling, clicking and
// speed control for a single player.
//
// A Session is driven by one goroutine. Scheduler callbacks, button and
// slider events and dot clicks must all arrive on that goroutine, so the
// session holds no locks.
package session

import (
	"io"
	"math/rand"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tomz197/dotdrop/internal/loop/config"
	"github.com/tomz197/dotdrop/internal/loop/sched"
	"github.com/tomz197/dotdrop/internal/object"
)

// Options wires a Session to its collaborators.
type Options struct {
	Render    RenderSurface
	Score     ScoreSurface
	Input     InputSurface
	Scheduler sched.Scheduler
	Rand      *rand.Rand  // Optional; time-seeded when nil
	Logger    *log.Logger // Optional; discards when nil
}

// liveDot is the session's record of a dot on the playfield.
type liveDot struct {
	dot    object.Dot
	handle Handle
}

// Session owns the live dots and the score and runs the two periodic loops.
type Session struct {
	render RenderSurface
	score  ScoreSurface
	input  InputSurface
	sched  sched.Scheduler
	sizer  *object.Sizer
	log    *log.Logger

	state   State
	points  int
	level   int
	periods Periods
	dots    map[object.DotID]*liveDot
	nextID  object.DotID

	spawnTok  sched.Token
	motionTok sched.Token
}

// New creates a session in the not-started state. It reads the current
// slider value and shows the speed label.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Session{
		render: opts.Render,
		score:  opts.Score,
		input:  opts.Input,
		sched:  opts.Scheduler,
		sizer:  object.NewSizer(opts.Rand),
		log:    logger,
		state:  StateNotStarted,
		dots:   make(map[object.DotID]*liveDot),
	}
	s.readSpeed()
	return s
}

// ToggleStart handles the start/pause button.
func (s *Session) ToggleStart() {
	if s.state == StateNotStarted {
		s.score.CreateScore(ScoreText(s.points))
	}

	if s.state == StateRunning {
		s.input.SetButtonLabel(config.LabelStart)
		s.state = StatePaused
		s.stopLoops()
		s.log.Debug("paused", "score", s.points, "dots", len(s.dots))
		return
	}

	s.input.SetButtonLabel(config.LabelPause)
	s.state = StateRunning
	s.startLoops()
	s.log.Debug("running", "level", s.level, "spawn", s.periods.Spawn, "motion", s.periods.Motion)
}

// SpeedChanged handles a slider change: the label and periods are refreshed
// and, while running, both loops restart at the new periods.
func (s *Session) SpeedChanged() {
	s.readSpeed()
	s.stopLoops()
	if s.state == StateRunning {
		s.startLoops()
	}
	s.log.Debug("speed changed", "level", s.level, "state", s.state)
}

// Click handles a hit on a dot. It only counts while running and only for
// dots that are still live.
func (s *Session) Click(id object.DotID) {
	if s.state != StateRunning {
		return
	}
	ld, ok := s.dots[id]
	if !ok {
		return
	}

	s.points += object.Points(ld.dot.Value)
	s.removeDot(id, ld)
	s.score.UpdateScore(ScoreText(s.points))
	s.log.Debug("dot hit", "id", id, "diameter", ld.dot.Diameter, "score", s.points)
}

// Close stops both loops. Live dots are left as they are.
func (s *Session) Close() {
	s.stopLoops()
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// Score returns the accumulated score.
func (s *Session) Score() int {
	return s.points
}

// SpeedLevel returns the clamped speed level in effect.
func (s *Session) SpeedLevel() int {
	return s.level
}

// Periods returns the periods derived from the current speed level.
func (s *Session) Periods() Periods {
	return s.periods
}

// Dots returns a copy of the live dots ordered by ID.
func (s *Session) Dots() []object.Dot {
	dots := make([]object.Dot, 0, len(s.dots))
	for _, ld := range s.dots {
		dots = append(dots, ld.dot)
	}
	sort.Slice(dots, func(i, j int) bool { return dots[i].ID < dots[j].ID })
	return dots
}

func (s *Session) readSpeed() {
	s.level = ClampLevel(s.input.SpeedLevel())
	s.periods = PeriodsFor(s.level)
	s.input.SetSpeedLabel(SpeedText(s.level))
}

// startLoops schedules the spawn and motion loops, cancelling any previous pair first.
func (s *Session) startLoops() {
	s.stopLoops()
	s.spawnTok = s.sched.SchedulePeriodic(s.spawnDot, s.periods.Spawn)
	s.motionTok = s.sched.SchedulePeriodic(s.advanceDots, s.periods.Motion)
}

func (s *Session) stopLoops() {
	if s.spawnTok != 0 {
		s.sched.Cancel(s.spawnTok)
		s.spawnTok = 0
	}
	if s.motionTok != 0 {
		s.sched.Cancel(s.motionTok)
		s.motionTok = 0
	}
}

// spawnDot creates one dot at the top of the playfield.
func (s *Session) spawnDot() {
	s.nextID++
	dot := s.sizer.NewDot(s.nextID, s.render.Width())
	ld := &liveDot{dot: dot}
	s.dots[dot.ID] = ld
	ld.handle = s.render.SpawnVisual(dot, s.Click)
}

// advanceDots moves every live dot down one step and drops those past the bottom edge.
func (s *Session) advanceDots() {
	screen := object.NewScreen(s.render.Width(), s.render.Height())
	for id, ld := range s.dots {
		ld.dot.Y += config.DotFallStep
		if screen.Below(ld.dot) {
			s.removeDot(id, ld)
			continue
		}
		s.render.AdvanceVisual(ld.handle, ld.dot.Y)
	}
}

// removeDot drops the dot from the live set and from the render surface.
func (s *Session) removeDot(id object.DotID, ld *liveDot) {
	delete(s.dots, id)
	s.render.RemoveVisual(ld.handle)
}
