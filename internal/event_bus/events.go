package event_bus

const (
	WizardSessionCreatedType  EventType = "wizard.session.created"
	WizardSectionReplacedType EventType = "wizard.section.replaced"
	WizardSessionClosedType   EventType = "wizard.session.closed"
)

type WizardSessionCreated struct {
	SessionId string
}

// WizardSectionReplaced is published after one input section of a session was
// replaced as a whole.
type WizardSectionReplaced struct {
	SessionId string
	Section   string
}

type WizardSessionClosed struct {
	SessionId string
	// Expired is true when the session was discarded for inactivity.
	Expired bool
}
