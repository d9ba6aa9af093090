package extract

import (
	"strings"

	"github.com/farxc/dre_warehouse/internal/pipeline/types"
)

// Section is the revenue block the reader is currently inside.
type Section string

const (
	SectionNone    Section = "NONE"
	SectionSales   Section = types.RevenueSales
	SectionService Section = types.RevenueService
)

// RowAction tells the revenue reader what to do with a row.
type RowAction int

const (
	// ActionData rows carry unit values for the current section.
	ActionData RowAction = iota
	// ActionMarker rows open a section and hold no values.
	ActionMarker
	// ActionSkip rows are subtotals or blank and leave the section unchanged.
	ActionSkip
	// ActionIgnore rows appear before any section marker.
	ActionIgnore
)

func (a RowAction) String() string {
	switch a {
	case ActionData:
		return "data"
	case ActionMarker:
		return "marker"
	case ActionSkip:
		return "skip"
	case ActionIgnore:
		return "ignore"
	}
	return "unknown"
}

// SectionMachine tracks SALES/SERVICE blocks while walking a revenue sheet
// top to bottom.
type SectionMachine struct {
	current Section
}

func NewSectionMachine() *SectionMachine {
	return &SectionMachine{current: SectionNone}
}

func (m *SectionMachine) Current() Section {
	return m.current
}

// Step classifies the row whose first cell is label and advances the state.
func (m *SectionMachine) Step(label string) RowAction {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case types.RevenueSales:
		m.current = SectionSales
		return ActionMarker
	case types.RevenueService:
		m.current = SectionService
		return ActionMarker
	case "", "TOTAL", "CONSOLIDADO":
		return ActionSkip
	}

	if m.current == SectionNone {
		return ActionIgnore
	}
	return ActionData
}
