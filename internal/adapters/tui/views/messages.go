package views

import "seqtag/internal/domain"

// Navigation messages handled by the app model

// SwitchToEditorMsg opens the relation editor for an owner
type SwitchToEditorMsg struct {
	Owner domain.Record
}

// SwitchToOwnersMsg returns to the owner list, optionally with a status line
type SwitchToOwnersMsg struct {
	Message string
	IsErr   bool
}

// SwitchToHelpMsg opens the help view
type SwitchToHelpMsg struct{}

// CloseHelpMsg returns from the help view to whatever was open before
type CloseHelpMsg struct{}

type errMsg struct {
	err error
}
