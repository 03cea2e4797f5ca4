// Package registry is the static catalog of applications known to the shell.
package registry

import (
	"errors"
	"strings"

	"macsim/model"
)

var ErrUnknownApp = errors.New("unknown application")

// App describes an application: its title, default window size and policy flags.
type App struct {
	ID             model.AppID
	Title          string
	Glyph          string
	Color          string
	DefaultWidth   float64
	DefaultHeight  float64
	SingleInstance bool
	HiddenFromDock bool
}

var catalog = []App{
	{ID: model.AppFinder, Title: "Finder", Glyph: "F", Color: "39", DefaultWidth: 800, DefaultHeight: 500},
	{ID: model.AppSafari, Title: "Safari", Glyph: "S", Color: "33", DefaultWidth: 1000, DefaultHeight: 600},
	{ID: model.AppGemini, Title: "Gemini AI", Glyph: "G", Color: "99", DefaultWidth: 500, DefaultHeight: 700, SingleInstance: true},
	{ID: model.AppPhotos, Title: "Photos", Glyph: "P", Color: "213", DefaultWidth: 800, DefaultHeight: 600},
	{ID: model.AppVSCode, Title: "VS Code", Glyph: "C", Color: "32", DefaultWidth: 900, DefaultHeight: 600},
	{ID: model.AppTerminal, Title: "Terminal", Glyph: ">", Color: "250", DefaultWidth: 600, DefaultHeight: 400},
	{ID: model.AppTypora, Title: "Typora", Glyph: "T", Color: "252", DefaultWidth: 800, DefaultHeight: 900},
	{ID: model.AppNotes, Title: "Notes", Glyph: "N", Color: "220", DefaultWidth: 800, DefaultHeight: 500},
	{ID: model.AppCalculator, Title: "Calculator", Glyph: "=", Color: "208", DefaultWidth: 320, DefaultHeight: 450, SingleInstance: true},
	{ID: model.AppSettings, Title: "Settings", Glyph: "*", Color: "245", DefaultWidth: 700, DefaultHeight: 500, SingleInstance: true},
	{ID: model.AppAboutMac, Title: "About This Mac", Glyph: "i", Color: "245", DefaultWidth: 300, DefaultHeight: 180, SingleInstance: true, HiddenFromDock: true},
}

var byID = func() map[model.AppID]App {
	m := make(map[model.AppID]App, len(catalog))
	for _, a := range catalog {
		m[a.ID] = a
	}
	return m
}()

// openTargets maps the names accepted by the terminal's open command.
var openTargets = map[string]model.AppID{
	"finder":     model.AppFinder,
	"safari":     model.AppSafari,
	"notes":      model.AppNotes,
	"calculator": model.AppCalculator,
	"settings":   model.AppSettings,
	"typora":     model.AppTypora,
	"vscode":     model.AppVSCode,
	"photos":     model.AppPhotos,
}

// Lookup returns the catalog entry for id.
func Lookup(id model.AppID) (App, error) {
	a, ok := byID[id]
	if !ok {
		return App{}, ErrUnknownApp
	}
	return a, nil
}

// IsSingleInstance reports whether at most one window of id may exist.
func IsSingleInstance(id model.AppID) bool {
	return byID[id].SingleInstance
}

// All returns every application in catalog order.
func All() []App {
	out := make([]App, len(catalog))
	copy(out, catalog)
	return out
}

// Dock returns the applications shown in the dock.
func Dock() []App {
	out := make([]App, 0, len(catalog))
	for _, a := range catalog {
		if !a.HiddenFromDock {
			out = append(out, a)
		}
	}
	return out
}

// Search filters the catalog by a case-insensitive title substring.
// An empty query matches everything.
func Search(query string) []App {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]App, 0, len(catalog))
	for _, a := range catalog {
		if strings.Contains(strings.ToLower(a.Title), q) {
			out = append(out, a)
		}
	}
	return out
}

// ParseOpenTarget resolves a name given to the terminal's open command.
func ParseOpenTarget(name string) (model.AppID, bool) {
	id, ok := openTargets[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}
