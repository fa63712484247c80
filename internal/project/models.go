package project

import (
	"fmt"
	"time"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

// Stage marks how far a project has progressed through the pipeline. Stages
// only ever move forward.
type Stage string

const (
	StageCreated   Stage = "created"
	StageExtracted Stage = "extracted"
	StageDetected  Stage = "detected"
	StageAnimated  Stage = "animated"
	StageAudioed   Stage = "audioed"
	StageRendered  Stage = "rendered"
)

var stageOrder = []Stage{
	StageCreated,
	StageExtracted,
	StageDetected,
	StageAnimated,
	StageAudioed,
	StageRendered,
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s.index() >= 0
}

func (s Stage) index() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the stage after s, or false when s is terminal or unknown.
func (s Stage) Next() (Stage, bool) {
	i := s.index()
	if i < 0 || i == len(stageOrder)-1 {
		return "", false
	}
	return stageOrder[i+1], true
}

// AtLeast reports whether s has reached other in pipeline order.
func (s Stage) AtLeast(other Stage) bool {
	si, oi := s.index(), other.index()
	return si >= 0 && oi >= 0 && si >= oi
}

// RegionKind distinguishes panels from the speech bubbles inside them.
type RegionKind string

const (
	RegionPanel  RegionKind = "panel"
	RegionBubble RegionKind = "bubble"
)

// ClipKind names the motion effect an animation clip was rendered with.
type ClipKind string

const (
	ClipPanScan    ClipKind = "pan_scan"
	ClipKenBurns   ClipKind = "ken_burns"
	ClipTransition ClipKind = "transition"
)

// Page is one extracted comic page in archive order.
type Page struct {
	ID         int64
	SourcePath string
	Index      int
}

// Region is a detected rectangle on a page. Panel boxes are page-relative;
// bubble boxes are relative to their parent panel and carry the OCR text.
type Region struct {
	ID        int64
	Kind      RegionKind
	Box       imaging.Rect
	ParentID  int64 // zero for panels
	PageIndex int
	Text      string
}

// Validate checks the structural invariants a region must satisfy before it
// is persisted.
func (r Region) Validate() error {
	if r.Kind != RegionPanel && r.Kind != RegionBubble {
		return fmt.Errorf("region kind %q unknown", r.Kind)
	}
	if r.Box.W <= 0 || r.Box.H <= 0 {
		return fmt.Errorf("region box %dx%d must have positive dimensions", r.Box.W, r.Box.H)
	}
	if r.Kind == RegionBubble && r.ParentID == 0 {
		return fmt.Errorf("bubble region requires a parent panel")
	}
	if r.PageIndex < 0 {
		return fmt.Errorf("region page index %d negative", r.PageIndex)
	}
	return nil
}

// AnimationClip is an ordered frame sequence rendered for a region.
type AnimationClip struct {
	ID            int64
	RegionID      int64
	Kind          ClipKind
	Frames        []string
	FrameDuration float64 // seconds per frame
}

// Duration returns the clip's play time in seconds.
func (c AnimationClip) Duration() float64 {
	return float64(len(c.Frames)) * c.FrameDuration
}

// AudioClip is an optional narration/effect track for a panel.
type AudioClip struct {
	ID       int64
	RegionID int64
	Path     string
	Duration float64 // seconds
}

// Segment is one slot in the final sequence: a clip plus optional audio.
type Segment struct {
	OrderIndex int
	Clip       AnimationClip
	Audio      *AudioClip
}

// Project is the aggregate a pipeline run operates on.
type Project struct {
	ID         int64
	RunID      string
	SourcePath string
	WorkDir    string
	Stage      Stage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
