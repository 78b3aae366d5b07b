package flow

// Button is one tappable keyboard option.
type Button struct {
	Label string
	Token string
}

// Response is the transport-neutral reply a flow operation emits. The
// adapter renders it as a message with an inline keyboard, an attached
// photo, or a main-menu reply keyboard.
type Response struct {
	// Text is the message body (HTML formatting). Empty means nothing to send.
	Text string
	// Media is a resolved local path of an image to attach, if any.
	Media string
	// Buttons are inline keyboard options laid out PerRow per row.
	Buttons []Button
	PerRow  int
	// MainMenu asks the adapter to attach the persistent main-menu keyboard.
	MainMenu bool
	// Edit asks the adapter to update the previous message in place instead
	// of sending a new one (quantity re-renders).
	Edit bool
}
