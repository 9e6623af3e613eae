// Package deps bundles the services screens need to build each other.
package deps

import (
	"context"

	"github.com/abhisek/capsulemed/internal/catalog"
	"github.com/abhisek/capsulemed/internal/chat"
	"github.com/abhisek/capsulemed/internal/llm"
	"github.com/abhisek/capsulemed/internal/logging"
	"github.com/abhisek/capsulemed/internal/mindmap"
	"github.com/abhisek/capsulemed/internal/pomodoro"
	"github.com/abhisek/capsulemed/internal/profile"
	"github.com/abhisek/capsulemed/internal/store"
	"github.com/abhisek/capsulemed/internal/workshop"
)

// Deps is shared by every screen. Provider and Profiles may be nil: the
// screens then show what is missing instead of failing.
type Deps struct {
	Catalog  *catalog.Catalog
	Profiles profile.Store
	Provider llm.Provider
	Tutor    *chat.Tutor
	Events   store.EventRepo
	MindMaps store.MindMapRepo
	Log      *logging.Logger

	MindMapConfig  mindmap.Config
	WorkshopConfig workshop.Config
	PomodoroConfig pomodoro.Config
}

// Fill sets defaults for zero fields.
func (d *Deps) Fill() {
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.Tutor == nil {
		d.Tutor = chat.NewTutor(d.Provider, chat.DefaultConfig())
	}
	if d.MindMapConfig == (mindmap.Config{}) {
		d.MindMapConfig = mindmap.DefaultConfig()
	}
	if d.WorkshopConfig == (workshop.Config{}) {
		d.WorkshopConfig = workshop.DefaultConfig()
	}
	if d.PomodoroConfig == (pomodoro.Config{}) {
		d.PomodoroConfig = pomodoro.DefaultConfig()
	}
}

// CurrentProfile returns the signed-in profile, or nil.
func (d *Deps) CurrentProfile(ctx context.Context) *profile.Profile {
	if d.Profiles == nil {
		return nil
	}
	p, err := d.Profiles.Current(ctx)
	if err != nil {
		d.Log.Warn("load profile", "error", err)
		return nil
	}
	return p
}
