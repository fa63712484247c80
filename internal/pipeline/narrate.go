package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zachdrouin/ComicAlive/internal/logging"
	"github.com/zachdrouin/ComicAlive/internal/project"
	"github.com/zachdrouin/ComicAlive/internal/services"
	"github.com/zachdrouin/ComicAlive/internal/services/tts"
	"github.com/zachdrouin/ComicAlive/internal/stage"
)

// actionKeywords trigger an impact sound effect when they appear in a
// panel's dialogue.
var actionKeywords = []string{
	"pow", "bam", "boom", "crash", "bang", "wham",
	"smash", "crack", "slam", "thud", "whack",
}

// Narrate synthesizes one audio track per panel from its bubble text. With
// audio disabled the stage advances without producing anything; synthesis
// problems cost the affected panel its audio, never the run.
func (c *Coordinator) Narrate(ctx context.Context) error {
	return c.run(ctx, c.narrateStage())
}

func (c *Coordinator) narrateStage() stageRunner {
	return stageRunner{
		name:       "narrate",
		requires:   project.StageAnimated,
		advancesTo: project.StageAudioed,
		execute:    c.executeNarrate,
		health:     c.narrateHealth,
	}
}

func (c *Coordinator) narrateHealth(context.Context) stage.Health {
	const name = "narrate"
	if !c.cfg.Audio.Enabled {
		return stage.Health{Name: name, Ready: true, Detail: "audio disabled"}
	}
	if c.cfg.Audio.TTSBinary == "" {
		return stage.Health{Name: name, Ready: true, Detail: "no TTS binary, placeholder tones only"}
	}
	return stage.Healthy(name)
}

func (c *Coordinator) executeNarrate(ctx context.Context, proj *project.Project) error {
	if c.narrator == nil {
		c.logger.Info("narration skipped", logging.String(logging.FieldRunID, c.runID))
		return nil
	}

	panels, err := c.store.Panels(ctx, proj.ID)
	if err != nil {
		return err
	}
	audioDir := project.AudioDir(c.workDir)

	for i, panel := range panels {
		if err := ctx.Err(); err != nil {
			return err
		}
		clip, err := c.narratePanel(ctx, proj.ID, panel, audioDir, i)
		if err != nil {
			return err
		}
		if clip != nil {
			if _, err := c.store.AddAudioClip(ctx, proj.ID, *clip); err != nil {
				return err
			}
		}
		c.emit("narrate", 100*float64(i+1)/float64(len(panels)),
			fmt.Sprintf("panel %d/%d", i+1, len(panels)))
	}
	return nil
}

// narratePanel builds the panel's track: speech from bubble text, plus an
// impact effect appended when the dialogue carries an action keyword.
// Returns nil when the panel stays silent.
func (c *Coordinator) narratePanel(ctx context.Context, projectID int64, panel project.Region, audioDir string, index int) (*project.AudioClip, error) {
	bubbles, err := c.store.BubblesFor(ctx, projectID, panel.ID)
	if err != nil {
		return nil, err
	}
	// Caption text recognized on the panel itself comes before the bubbles.
	var texts []string
	if caption := strings.TrimSpace(panel.Text); caption != "" {
		texts = append(texts, caption)
	}
	bubbleCount := 0
	for _, bubble := range bubbles {
		if text := strings.TrimSpace(bubble.Text); text != "" {
			texts = append(texts, text)
			bubbleCount++
		}
	}
	joined := strings.Join(texts, " ")

	speechPath, speechDur, err := c.synthesizeSpeech(ctx, texts, bubbleCount, joined, audioDir, index)
	if err != nil {
		return nil, err
	}

	var effectPath string
	var effectDur float64
	if c.cfg.Audio.SoundEffects && containsActionKeyword(joined) {
		path := filepath.Join(audioDir, fmt.Sprintf("panel_%03d_effect.wav", index))
		if dur, err := tts.WriteImpactEffect(path); err == nil {
			effectPath, effectDur = path, dur
		} else {
			c.logger.Warn("impact effect failed", logging.Int("panel", index), logging.Error(err))
		}
	}

	switch {
	case speechPath != "" && effectPath != "":
		// The impact effect follows the dialogue rather than masking it.
		combined := filepath.Join(audioDir, fmt.Sprintf("panel_%03d.wav", index))
		if dur, err := tts.Append(combined, speechPath, effectPath); err == nil {
			return &project.AudioClip{RegionID: panel.ID, Path: combined, Duration: dur}, nil
		}
		// Incompatible sample rates: keep the speech, drop the effect.
		return &project.AudioClip{RegionID: panel.ID, Path: speechPath, Duration: speechDur}, nil
	case speechPath != "":
		return &project.AudioClip{RegionID: panel.ID, Path: speechPath, Duration: speechDur}, nil
	case effectPath != "":
		return &project.AudioClip{RegionID: panel.ID, Path: effectPath, Duration: effectDur}, nil
	default:
		return nil, nil
	}
}

// synthesizeSpeech renders the panel's dialogue. Mixed voice mode with
// several bubbles gives each text piece its own voice and overlays the
// results; a panel caption rides along as one more piece.
func (c *Coordinator) synthesizeSpeech(ctx context.Context, texts []string, bubbleCount int, joined, audioDir string, index int) (string, float64, error) {
	if joined == "" {
		return "", 0, nil
	}

	if c.cfg.Audio.Voice == tts.VoiceMixed && bubbleCount > 1 {
		var parts []string
		for b, text := range texts {
			path := filepath.Join(audioDir, fmt.Sprintf("panel_%03d_bubble_%02d.wav", index, b))
			res, err := c.synthesizeOne(ctx, text, c.narrator.NextVoice(), path)
			if err != nil {
				return "", 0, err
			}
			if res != nil {
				parts = append(parts, res.Path)
			}
		}
		if len(parts) == 0 {
			return "", 0, nil
		}
		overlay := filepath.Join(audioDir, fmt.Sprintf("panel_%03d_speech.wav", index))
		dur, err := tts.Mix(overlay, parts...)
		if err != nil {
			c.logger.Warn("voice overlay failed", logging.Int("panel", index), logging.Error(err))
			if dur, derr := tts.Duration(parts[0]); derr == nil {
				return parts[0], dur, nil
			}
			return "", 0, nil
		}
		return overlay, dur, nil
	}

	voice := c.cfg.Audio.Voice
	if voice == tts.VoiceMixed {
		voice = c.narrator.NextVoice()
	}
	path := filepath.Join(audioDir, fmt.Sprintf("panel_%03d_speech.wav", index))
	res, err := c.synthesizeOne(ctx, joined, voice, path)
	if err != nil || res == nil {
		return "", 0, err
	}
	return res.Path, res.Duration, nil
}

// synthesizeOne contains recoverable synthesis failures: the panel loses
// this piece of audio and the run continues.
func (c *Coordinator) synthesizeOne(ctx context.Context, text, voice, path string) (*tts.Result, error) {
	res, err := c.narrator.Synthesize(ctx, tts.Request{
		Text:  text,
		Voice: voice,
		Pitch: c.cfg.Audio.Pitch,
		Rate:  c.cfg.Audio.Rate,
	}, path)
	if err != nil {
		if errors.Is(err, services.ErrSynthesis) {
			c.logger.Warn("synthesis failed", logging.String("path", path), logging.Error(err))
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func containsActionKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range actionKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
