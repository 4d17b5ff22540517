package astispeak

import "github.com/go-ole/go-ole"

// Speaker says words out loud through the host's text to speech engine
type Speaker struct {
	o Options

	// Windows
	windowsIDispatch *ole.IDispatch
	windowsIUnknown  *ole.IUnknown
}

// Options represents speaker options
type Options struct {
	BinaryDirPath string `toml:"binary_dir_path"`
	Voice         string `toml:"voice"`
}

// New creates a new speaker
func New(o Options) *Speaker {
	return &Speaker{o: o}
}
