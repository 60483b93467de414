package palette

import (
	"fmt"
	"strings"

	"github.com/1broseidon/placekeeper/internal/store"
)

// ActionKind is what a menu selection asks for.
type ActionKind int

const (
	ActionSave ActionKind = iota + 1
	ActionRestore
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionSave:
		return "save"
	case ActionRestore:
		return "restore"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// Action is a menu selection resolved to a snapshot operation.
type Action struct {
	Kind ActionKind
	Name string
}

const (
	savePrefix    = "save:"
	restorePrefix = "restore:"
)

// SnapshotItems lists the snapshot actions: save the default snapshot, save
// over each stored one, and restore each stored one. The default snapshot is
// highlighted.
func SnapshotItems(infos []store.Info, defaultName string) []Item {
	items := []Item{
		{Label: "Save", IsHeader: true},
		{Label: "Save " + defaultName, Action: savePrefix + defaultName, Icon: "document-save"},
	}
	for _, info := range infos {
		if info.Name == defaultName {
			continue
		}
		items = append(items, Item{Label: "Save " + info.Name, Action: savePrefix + info.Name, Icon: "document-save"})
	}

	if len(infos) > 0 {
		items = append(items, Item{Label: "Restore", IsHeader: true})
	}
	for _, info := range infos {
		items = append(items, Item{
			Label:    fmt.Sprintf("Restore %s  (%s)", info.Name, info.ModTime.Format("2006-01-02 15:04")),
			Action:   restorePrefix + info.Name,
			Icon:     "view-restore",
			IsActive: info.Name == defaultName,
		})
	}
	return items
}

// ParseAction resolves a selection. Alt+d (kb-custom-2) on a restore row asks
// to delete that snapshot instead.
func ParseAction(res SelectResult) (Action, error) {
	action := res.Item.Action
	switch {
	case strings.HasPrefix(action, savePrefix):
		return Action{Kind: ActionSave, Name: strings.TrimPrefix(action, savePrefix)}, nil
	case strings.HasPrefix(action, restorePrefix):
		name := strings.TrimPrefix(action, restorePrefix)
		if res.ExitCode == ExitCustom2 {
			return Action{Kind: ActionDelete, Name: name}, nil
		}
		return Action{Kind: ActionRestore, Name: name}, nil
	default:
		return Action{}, fmt.Errorf("palette: no action for %q", res.Item.Label)
	}
}

// Choose shows the snapshot menu and returns the chosen action. Selecting a
// header shows the menu again.
func Choose(b Backend, infos []store.Info, defaultName string) (Action, error) {
	items := SnapshotItems(infos, defaultName)
	for {
		res, err := b.Show("placekeeper", items, "Enter: run  Alt+d: delete snapshot")
		if err != nil {
			return Action{}, err
		}
		if res.Item.IsHeader {
			continue
		}
		return ParseAction(res)
	}
}
