package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/drilltable/internal/core"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

const backLabel = "Back"

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func() tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == backLabel {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

// buildMenuTree lists the registered tables, one submenu per group.
// Tables without a group sit directly in the root menu.
func buildMenuTree(service *core.Service) *Menu {
	reg := service.Registry()
	root := &Menu{Title: "Tables"}

	for _, group := range reg.Groups() {
		items := tableItems(service, reg.ByGroup(group))
		if group == "" {
			root.Items = append(root.Items, items...)
			continue
		}
		root.Items = append(root.Items, MenuItem{
			Label:   group + " ->",
			Submenu: &Menu{Title: group, Items: append(items, MenuItem{Label: backLabel})},
		})
	}

	if len(root.Items) == 0 {
		root.Items = []MenuItem{{Label: "No tables defined"}}
	}

	linkParents(root, nil)

	return root
}

func tableItems(service *core.Service, defs []core.TableDefinition) []MenuItem {
	items := make([]MenuItem, len(defs))
	for i, def := range defs {
		key := def.Info.Key
		items[i] = MenuItem{
			Label:  def.Info.Label,
			Action: func() tea.Cmd { return openTable(service, key) },
		}
	}
	return items
}
