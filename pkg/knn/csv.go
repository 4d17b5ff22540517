package astiknn

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
)

// Name of the label column
const labelColumn = "label"

// NumericLabels maps the numeric labels written by the training tool to gesture labels
var NumericLabels = map[string]string{
	"0": "fist",
	"1": "palm",
	"2": "thumbs_up",
	"3": "peace",
	"4": "ok",
	"5": "point",
	"6": "pinch",
	"7": "three_fingers",
}

// LoadCSV loads samples from CSV files into the model
func (m *Model) LoadCSV(paths ...string) (err error) {
	for _, p := range paths {
		// Open
		var f *os.File
		if f, err = os.Open(p); err != nil {
			err = errors.Wrapf(err, "astiknn: opening %s failed", p)
			return
		}

		// Read
		var n int
		n, err = m.ReadCSV(f)
		f.Close()
		if err != nil {
			err = errors.Wrapf(err, "astiknn: reading %s failed", p)
			return
		}
		astilog.Debugf("astiknn: loaded %d samples from %s", n, p)
	}
	return
}

// LoadCSVDir loads every CSV file of a directory into the model
func (m *Model) LoadCSVDir(dirPath string) (err error) {
	// Glob
	var ps []string
	if ps, err = filepath.Glob(filepath.Join(dirPath, "*.csv")); err != nil {
		err = errors.Wrapf(err, "astiknn: globbing %s failed", dirPath)
		return
	}

	// Load
	if err = m.LoadCSV(ps...); err != nil {
		err = errors.Wrap(err, "astiknn: loading csv failed")
		return
	}
	return
}

// ReadCSV reads samples having one column per feature and a label column
func (m *Model) ReadCSV(rd io.Reader) (n int, err error) {
	// Read header
	r := csv.NewReader(rd)
	var h []string
	if h, err = r.Read(); err != nil {
		err = errors.Wrap(err, "astiknn: reading header failed")
		return
	}

	// Get label column
	lc := -1
	for idx, c := range h {
		if c == labelColumn {
			lc = idx
			break
		}
	}
	if lc < 0 {
		err = errors.New("astiknn: no label column")
		return
	}

	// Loop through records
	for {
		// Read
		var rc []string
		if rc, err = r.Read(); err != nil {
			if err == io.EOF {
				err = nil
				break
			}
			err = errors.Wrap(err, "astiknn: reading record failed")
			return
		}

		// Parse features
		fs := make([]float64, 0, len(rc)-1)
		for idx, v := range rc {
			if idx == lc {
				continue
			}
			var f float64
			if f, err = strconv.ParseFloat(v, 64); err != nil {
				err = errors.Wrapf(err, "astiknn: parsing %s failed", v)
				return
			}
			fs = append(fs, f)
		}

		// Parse label
		l := rc[lc]
		if v, ok := NumericLabels[l]; ok {
			l = v
		}

		// Add
		if err = m.Add(fs, l); err != nil {
			err = errors.Wrap(err, "astiknn: adding sample failed")
			return
		}
		n++
	}
	return
}

// Collector collects labeled samples and saves them as CSV
type Collector struct {
	ls []string
	ss [][]float64
}

// NewCollector creates a new collector
func NewCollector() *Collector {
	return &Collector{}
}

// Add adds a labeled sample
func (c *Collector) Add(features []float64, label string) {
	c.ss = append(c.ss, features)
	c.ls = append(c.ls, label)
}

// Len returns the number of collected samples
func (c *Collector) Len() int { return len(c.ss) }

// Counts returns the number of collected samples per label
func (c *Collector) Counts() (cs map[string]int) {
	cs = make(map[string]int)
	for _, l := range c.ls {
		cs[l]++
	}
	return
}

// Write writes collected samples as CSV
func (c *Collector) Write(wr io.Writer) (err error) {
	// Nothing to write
	if len(c.ss) == 0 {
		return
	}

	// Write header
	w := csv.NewWriter(wr)
	h := make([]string, 0, len(c.ss[0])+1)
	for idx := range c.ss[0] {
		h = append(h, strconv.Itoa(idx))
	}
	if err = w.Write(append(h, labelColumn)); err != nil {
		err = errors.Wrap(err, "astiknn: writing header failed")
		return
	}

	// Loop through samples
	for idx, s := range c.ss {
		rc := make([]string, 0, len(s)+1)
		for _, f := range s {
			rc = append(rc, strconv.FormatFloat(f, 'f', -1, 64))
		}
		if err = w.Write(append(rc, c.ls[idx])); err != nil {
			err = errors.Wrap(err, "astiknn: writing record failed")
			return
		}
	}

	// Flush
	w.Flush()
	if err = w.Error(); err != nil {
		err = errors.Wrap(err, "astiknn: flushing failed")
		return
	}
	return
}

// Save saves collected samples to a timestamped CSV file in dirPath
func (c *Collector) Save(dirPath string, t time.Time) (path string, err error) {
	// Make sure the dir exists
	if err = os.MkdirAll(dirPath, 0755); err != nil {
		err = errors.Wrapf(err, "astiknn: mkdirall %s failed", dirPath)
		return
	}

	// Create file
	path = filepath.Join(dirPath, "gesture_data_"+t.Format("20060102_150405")+".csv")
	var f *os.File
	if f, err = os.Create(path); err != nil {
		err = errors.Wrapf(err, "astiknn: creating %s failed", path)
		return
	}
	defer f.Close()

	// Write
	if err = c.Write(f); err != nil {
		err = errors.Wrapf(err, "astiknn: writing %s failed", path)
		return
	}
	return
}
