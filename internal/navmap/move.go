package navmap

import (
	"fmt"

	"gridedit/internal/model"
)

type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

// ActivateFunc receives the cell to activate. atBoundary is true when the
// move hit the grid edge and the current cell is re-activated instead.
type ActivateFunc func(cellID string, atBoundary bool)

// EditingFunc reports whether a cell is currently being edited.
type EditingFunc func(cellID string) bool

// Move dispatches to the horizontal or vertical mover.
func Move(dir Direction, current string, m *Map, editing EditingFunc, activate ActivateFunc) error {
	switch dir {
	case Left, Right:
		return MoveHorizontal(dir, current, m, editing, activate)
	case Up, Down:
		return MoveVertical(dir, current, m, editing, activate)
	default:
		return fmt.Errorf("%w: %q", model.ErrInvalidDirection, dir)
	}
}

// MoveHorizontal moves one column left or right.
func MoveHorizontal(dir Direction, current string, m *Map, editing EditingFunc, activate ActivateFunc) error {
	var delta int
	switch dir {
	case Left:
		delta = -1
	case Right:
		delta = 1
	default:
		return fmt.Errorf("%w: %q is not horizontal", model.ErrInvalidDirection, dir)
	}
	return move(current, m, 0, delta, editing, activate)
}

// MoveVertical moves one row up or down.
func MoveVertical(dir Direction, current string, m *Map, editing EditingFunc, activate ActivateFunc) error {
	var delta int
	switch dir {
	case Up:
		delta = -1
	case Down:
		delta = 1
	default:
		return fmt.Errorf("%w: %q is not vertical", model.ErrInvalidDirection, dir)
	}
	return move(current, m, delta, 0, editing, activate)
}

func move(current string, m *Map, dRow, dCol int, editing EditingFunc, activate ActivateFunc) error {
	_, pos, err := m.Resolve(current)
	if err != nil {
		return err
	}
	// An open lookup keeps the arrow keys for its option list.
	if pos.Type == model.CellCombo && editing != nil && editing(current) {
		return nil
	}
	if activate == nil {
		return nil
	}
	target, ok := m.At(pos.Row+dRow, pos.Col+dCol)
	if !ok {
		activate(current, true)
		return nil
	}
	activate(target, false)
	return nil
}
