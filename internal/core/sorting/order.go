package sorting

import (
	"github.com/google/uuid"

	"github.com/agenthands/rhymenet/internal/core/model"
)

var (
	defaultNewID = uuid.NewString
	newID        = defaultNewID
)

// DefaultDirection is desc for numeric counts, asc otherwise.
func DefaultDirection(field model.SortField) model.SortDirection {
	switch field {
	case model.SortByDepth, model.SortByFrequency:
		return model.Desc
	}
	return model.Asc
}

func NewCriterion(field model.SortField) model.SortCriterion {
	return model.SortCriterion{ID: newID(), Field: field, Direction: DefaultDirection(field)}
}

// Add appends a criterion for field, or flips its direction if the order
// already has one.
func Add(order model.SortOrder, field model.SortField) model.SortOrder {
	out := clone(order)
	for i := range out {
		if out[i].Field == field {
			out[i].Direction = out[i].Direction.Flip()
			return out
		}
	}
	return append(out, NewCriterion(field))
}

func Remove(order model.SortOrder, id string) model.SortOrder {
	out := make(model.SortOrder, 0, len(order))
	for _, c := range order {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func Toggle(order model.SortOrder, id string) model.SortOrder {
	out := clone(order)
	for i := range out {
		if out[i].ID == id {
			out[i].Direction = out[i].Direction.Flip()
		}
	}
	return out
}

// Move relocates the criterion at from to index to. Out of range indices
// leave the order unchanged.
func Move(order model.SortOrder, from, to int) model.SortOrder {
	out := clone(order)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}

	c := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append(model.SortOrder{c}, out[to:]...)...)
	return out
}

func clone(order model.SortOrder) model.SortOrder {
	out := make(model.SortOrder, len(order))
	copy(out, order)
	return out
}
