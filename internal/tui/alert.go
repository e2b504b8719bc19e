package tui

// alertBox is the screens' notifier: the latest alert stays visible until the
// next key press. It is shared by pointer so copies of a model see the same box.
type alertBox struct {
	text string
}

func (a *alertBox) Notify(text string) {
	a.text = text
}

func (a *alertBox) clear() {
	a.text = ""
}

func (a *alertBox) view() string {
	if a.text == "" {
		return ""
	}
	return AlertText(a.text) + "\n"
}
