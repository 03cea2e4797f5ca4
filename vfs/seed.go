package vfs

import "macsim/model"

// DefaultDesktopPosition is where new desktop items appear.
var DefaultDesktopPosition = model.Position{X: 120, Y: 20}

// Seed returns the initial tree used when nothing usable is stored.
func Seed(now model.Timestamp) model.Table {
	folder := func(id, name, parent string, children ...string) model.Node {
		if children == nil {
			children = []string{}
		}
		return model.Node{
			ID:        id,
			Name:      name,
			Kind:      model.KindFolder,
			Children:  children,
			ParentID:  parent,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	file := func(id, name, parent, content string, x, y float64) model.Node {
		return model.Node{
			ID:        id,
			Name:      name,
			Kind:      model.KindFile,
			Content:   content,
			ParentID:  parent,
			CreatedAt: now,
			UpdatedAt: now,
			Position:  &model.Position{X: x, Y: y},
		}
	}

	portfolio := folder("portfolio_folder", "Portfolio", model.DesktopID)
	portfolio.Position = &model.Position{X: 20, Y: 220}

	return model.Table{
		model.RootID:      folder(model.RootID, "Macintosh HD", "", model.DesktopID, model.DocumentsID, model.DownloadsID),
		model.DesktopID:   folder(model.DesktopID, "Desktop", model.RootID, "project_specs", "welcome_txt", "portfolio_folder"),
		model.DocumentsID: folder(model.DocumentsID, "Documents", model.RootID, "notes_folder"),
		model.DownloadsID: folder(model.DownloadsID, "Downloads", model.RootID),
		"notes_folder":    folder("notes_folder", "My Notes", model.DocumentsID),
		"project_specs": file("project_specs", "Project_Specs.md", model.DesktopID,
			"# Project Specifications\n\n- Build a macOS web sim\n- Make it awesome\n- Use React and Tailwind", 20, 20),
		"welcome_txt": file("welcome_txt", "Welcome.txt", model.DesktopID,
			"Welcome to macOS Web Experience!\n\nExplore the system, open apps, and enjoy.", 20, 120),
		"portfolio_folder": portfolio,
	}
}
