package astispeak

// Init initializes the speaker
func (s *Speaker) Init() error { return nil }

// Close implements the io.Closer interface
func (s *Speaker) Close() error { return nil }

// Say implements the astigesture.Speaker interface
func (s *Speaker) Say(i string) error {
	// Init args
	var args []string
	if s.o.Voice != "" {
		args = append(args, "-v", s.o.Voice)
	}
	return s.exec("espeak", append(args, i)...)
}
