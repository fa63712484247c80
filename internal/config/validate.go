package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateAnimation(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if d.MinPanelRatio <= 0 || d.MinPanelRatio >= 1 {
		return errors.New("detection.min_panel_ratio must be in (0, 1)")
	}
	if d.MaxPanelRatio <= d.MinPanelRatio || d.MaxPanelRatio > 1 {
		return errors.New("detection.max_panel_ratio must be in (min_panel_ratio, 1]")
	}
	if d.PanelThreshold < 0 || d.PanelThreshold > 255 {
		return errors.New("detection.panel_threshold must be in [0, 255]")
	}
	if d.BubbleSolidity < 0 || d.BubbleSolidity > 1 {
		return errors.New("detection.bubble_solidity must be in [0, 1]")
	}
	return nil
}

func (c *Config) validateAnimation() error {
	a := c.Animation
	if a.FPS <= 0 {
		return errors.New("animation.fps must be positive")
	}
	switch a.Style {
	case "pan_scan", "ken_burns", "mixed":
	default:
		return fmt.Errorf("animation.style must be pan_scan, ken_burns, or mixed (got %q)", a.Style)
	}
	switch a.TransitionKind {
	case "fade", "slide", "zoom":
	default:
		return fmt.Errorf("animation.transition_kind must be fade, slide, or zoom (got %q)", a.TransitionKind)
	}
	if a.PanelDuration <= 0 {
		return errors.New("animation.panel_duration must be positive")
	}
	if a.TransitionDuration < 0 {
		return errors.New("animation.transition_duration must not be negative")
	}
	if a.SpeedFactor <= 0 {
		return errors.New("animation.speed_factor must be positive")
	}
	return nil
}

func (c *Config) validateAudio() error {
	a := c.Audio
	if !a.Enabled {
		return nil
	}
	if a.Pitch < -20 || a.Pitch > 20 {
		return errors.New("audio.pitch must be in [-20, 20]")
	}
	if a.Rate < 0.25 || a.Rate > 4.0 {
		return errors.New("audio.rate must be in [0.25, 4.0]")
	}
	if a.SynthPerMinute < 0 {
		return errors.New("audio.synth_per_minute must not be negative")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	f := c.FFmpeg
	if f.Binary == "" {
		return errors.New("ffmpeg.binary must be set")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return errors.New("ffmpeg.width and ffmpeg.height must be positive")
	}
	if f.CRF < 0 || f.CRF > 51 {
		return errors.New("ffmpeg.crf must be in [0, 51]")
	}
	return nil
}
