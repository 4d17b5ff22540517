package astigesture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
)

// LoadCommands loads custom voice commands from a JSON object mapping phrases to actions. Key order
// is preserved since it drives phrase resolution. A missing file yields no commands.
func LoadCommands(path string) (ps []Phrase, err error) {
	// Read
	var b []byte
	if b, err = ioutil.ReadFile(path); err != nil {
		if os.IsNotExist(err) {
			err = nil
			return
		}
		err = errors.Wrapf(err, "astigesture: reading %s failed", path)
		return
	}

	// Decode
	if ps, err = decodeCommands(b); err != nil {
		err = errors.Wrapf(err, "astigesture: decoding %s failed", path)
		return
	}
	return
}

func decodeCommands(b []byte) (ps []Phrase, err error) {
	// Empty
	if len(bytes.TrimSpace(b)) == 0 {
		return
	}

	// Opening delimiter
	d := json.NewDecoder(bytes.NewReader(b))
	var t json.Token
	if t, err = d.Token(); err != nil {
		err = errors.Wrap(err, "astigesture: reading token failed")
		return
	}
	if dl, ok := t.(json.Delim); !ok || dl != '{' {
		err = fmt.Errorf("astigesture: invalid token %v, expected {", t)
		return
	}

	// Loop through keys
	for d.More() {
		// Key
		if t, err = d.Token(); err != nil {
			err = errors.Wrap(err, "astigesture: reading key failed")
			return
		}
		k, _ := t.(string)

		// Value
		var v string
		if err = d.Decode(&v); err != nil {
			err = errors.Wrapf(err, "astigesture: decoding value of %s failed", k)
			return
		}

		// Append
		ps = append(ps, Phrase{
			Action: ActionToken(v),
			Phrase: k,
		})
	}

	// Closing delimiter
	if _, err = d.Token(); err != nil {
		err = errors.Wrap(err, "astigesture: reading closing token failed")
		return
	}
	return
}

// SaveCommands saves voice commands as a JSON object while preserving their order
func SaveCommands(path string, ps []Phrase) (err error) {
	// Encode
	buf := &bytes.Buffer{}
	buf.WriteString("{\n")
	for idx, p := range ps {
		// Marshal
		var k, v []byte
		if k, err = json.Marshal(p.Phrase); err != nil {
			err = errors.Wrap(err, "astigesture: marshaling phrase failed")
			return
		}
		if v, err = json.Marshal(string(p.Action)); err != nil {
			err = errors.Wrap(err, "astigesture: marshaling action failed")
			return
		}

		// Write
		buf.WriteString("    ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
		if idx < len(ps)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	// Write
	if err = ioutil.WriteFile(path, buf.Bytes(), 0644); err != nil {
		err = errors.Wrapf(err, "astigesture: writing %s failed", path)
		return
	}
	return
}
