package astigesture

import (
	"strings"
	"sync"
)

// Phrase represents a voice phrase mapped to an action
type Phrase struct {
	Action ActionToken `json:"action" toml:"action"`
	Phrase string      `json:"phrase" toml:"phrase"`
}

// DefaultPhrases are the default voice phrases. Order matters: the first phrase contained in an
// utterance wins, so more specific phrases must come first. "unmute" contains "mute" and
// therefore resolves to mute_audio with this ordering, both actions toggle the mute key.
var DefaultPhrases = []Phrase{
	{Phrase: "open browser", Action: ActionOpenBrowser},
	{Phrase: "close browser", Action: ActionCloseBrowser},
	{Phrase: "volume up", Action: ActionVolumeUp},
	{Phrase: "volume down", Action: ActionVolumeDown},
	{Phrase: "mute", Action: ActionMute},
	{Phrase: "unmute", Action: ActionUnmute},
	{Phrase: "take screenshot", Action: ActionScreenshot},
	{Phrase: "open calculator", Action: ActionOpenCalculator},
	{Phrase: "open notepad", Action: ActionOpenNotepad},
	{Phrase: "minimize window", Action: ActionMinimizeWindow},
	{Phrase: "maximize window", Action: ActionMaximizeWindow},
	{Phrase: "switch window", Action: ActionAltTab},
	{Phrase: "scroll up", Action: ActionScrollUp},
	{Phrase: "scroll down", Action: ActionScrollDown},
	{Phrase: "zoom in", Action: ActionZoomIn},
	{Phrase: "zoom out", Action: ActionZoomOut},
	{Phrase: "hello system", Action: ActionGreeting},
	{Phrase: "goodbye system", Action: ActionGoodbye},
}

// PhraseMapper maps free text utterances to actions with first-match substring containment.
// Phrases are tested in insertion order.
type PhraseMapper struct {
	m  sync.RWMutex // Locks ps
	ps []Phrase
}

// NewPhraseMapper creates a new phrase mapper
func NewPhraseMapper(ps ...Phrase) (m *PhraseMapper) {
	m = &PhraseMapper{}
	for _, p := range ps {
		m.Add(p.Phrase, p.Action)
	}
	return
}

// Add adds a phrase. An existing phrase keeps its position and is mapped to the new action.
func (m *PhraseMapper) Add(phrase string, a ActionToken) {
	// Lock
	m.m.Lock()
	defer m.m.Unlock()

	// Phrase already exists
	phrase = strings.ToLower(phrase)
	for idx := range m.ps {
		if m.ps[idx].Phrase == phrase {
			m.ps[idx].Action = a
			return
		}
	}

	// Append
	m.ps = append(m.ps, Phrase{Action: a, Phrase: phrase})
}

// Phrases returns the phrases in resolution order
func (m *PhraseMapper) Phrases() (ps []Phrase) {
	m.m.RLock()
	defer m.m.RUnlock()
	ps = make([]Phrase, len(m.ps))
	copy(ps, m.ps)
	return
}

// Resolve returns the action of the first phrase contained in the utterance
func (m *PhraseMapper) Resolve(utterance string) (a ActionToken, ok bool) {
	// Lock
	m.m.RLock()
	defer m.m.RUnlock()

	// Loop through phrases
	utterance = strings.ToLower(utterance)
	for _, p := range m.ps {
		if p.Phrase != "" && strings.Contains(utterance, p.Phrase) {
			return p.Action, true
		}
	}
	return
}
