package astispeak

import (
	"github.com/asticode/go-astilog"
	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/pkg/errors"
)

// Init creates the SAPI voice and selects the configured voice if any
func (s *Speaker) Init() (err error) {
	// Initialize ole
	if err = ole.CoInitialize(0); err != nil {
		err = errors.Wrap(err, "astispeak: initializing ole failed")
		return
	}

	// Create voice
	astilog.Debug("astispeak: creating SAPI.SpVoice")
	if s.windowsIUnknown, err = oleutil.CreateObject("SAPI.SpVoice"); err != nil {
		err = errors.Wrap(err, "astispeak: creating SAPI.SpVoice failed")
		return
	}
	if s.windowsIDispatch, err = s.windowsIUnknown.QueryInterface(ole.IID_IDispatch); err != nil {
		err = errors.Wrap(err, "astispeak: querying SAPI.SpVoice dispatch failed")
		return
	}

	// Select voice
	if s.o.Voice != "" {
		if err = s.selectVoice(s.o.Voice); err != nil {
			err = errors.Wrapf(err, "astispeak: selecting voice %s failed", s.o.Voice)
			return
		}
	}
	return
}

// selectVoice looks the voice token up by name and assigns it to the SAPI voice
func (s *Speaker) selectVoice(name string) (err error) {
	// Get tokens
	var v *ole.VARIANT
	if v, err = oleutil.CallMethod(s.windowsIDispatch, "GetVoices", "Name="+name, ""); err != nil {
		err = errors.Wrap(err, "astispeak: getting voices failed")
		return
	}
	ts := v.ToIDispatch()
	defer ts.Release()

	// Count tokens
	var c *ole.VARIANT
	if c, err = oleutil.GetProperty(ts, "Count"); err != nil {
		err = errors.Wrap(err, "astispeak: counting voices failed")
		return
	}
	if c.Val == 0 {
		err = errors.New("astispeak: no voice matches")
		return
	}

	// Get first token
	var i *ole.VARIANT
	if i, err = oleutil.CallMethod(ts, "Item", 0); err != nil {
		err = errors.Wrap(err, "astispeak: getting voice failed")
		return
	}
	t := i.ToIDispatch()
	defer t.Release()

	// Assign
	if _, err = oleutil.PutPropertyRef(s.windowsIDispatch, "Voice", t); err != nil {
		err = errors.Wrap(err, "astispeak: assigning voice failed")
		return
	}
	astilog.Debugf("astispeak: voice %s selected", name)
	return
}

// Close implements the io.Closer interface
func (s *Speaker) Close() error {
	if s.windowsIDispatch != nil {
		s.windowsIDispatch.Release()
	}
	if s.windowsIUnknown != nil {
		s.windowsIUnknown.Release()
	}
	ole.CoUninitialize()
	return nil
}

// Say implements the astigesture.Speaker interface
func (s *Speaker) Say(msg string) (err error) {
	// Not initialized
	if s.windowsIDispatch == nil {
		err = errors.New("astispeak: speaker is not initialized")
		return
	}

	// Speak
	var v *ole.VARIANT
	if v, err = oleutil.CallMethod(s.windowsIDispatch, "Speak", msg); err != nil {
		err = errors.Wrapf(err, "astispeak: speaking %s failed", msg)
		return
	}
	return v.Clear()
}
