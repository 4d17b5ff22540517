package astiknn

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel(t *testing.T) {
	m := New(3)

	// No samples
	_, _, err := m.Predict([]float64{0, 0})
	assert.Equal(t, ErrNoSamples, err)

	// Add
	require.NoError(t, m.Add([]float64{0, 0}, "fist"))
	require.NoError(t, m.Add([]float64{0, 1}, "fist"))
	require.NoError(t, m.Add([]float64{10, 10}, "palm"))
	require.NoError(t, m.Add([]float64{10, 11}, "palm"))
	assert.Error(t, m.Add([]float64{1}, "fist"))
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, []string{"fist", "palm"}, m.Labels())

	// Predict
	l, c, err := m.Predict([]float64{0, 0.5})
	require.NoError(t, err)
	assert.Equal(t, "fist", l)
	assert.InDelta(t, 2.0/3.0, c, 1e-9)
	l, _, err = m.Predict([]float64{11, 11})
	require.NoError(t, err)
	assert.Equal(t, "palm", l)

	// Invalid length
	_, _, err = m.Predict([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestModelTie(t *testing.T) {
	m := New(2)
	require.NoError(t, m.Add([]float64{0}, "fist"))
	require.NoError(t, m.Add([]float64{2}, "palm"))
	l, c, err := m.Predict([]float64{1.5})
	require.NoError(t, err)
	assert.Equal(t, "palm", l)
	assert.Equal(t, 0.5, c)
}

func TestModelEuclideanDistance(t *testing.T) {
	m := New(1)
	require.NoError(t, m.Add([]float64{3, 0}, "fist"))
	require.NoError(t, m.Add([]float64{2, 2}, "palm"))
	l, c, err := m.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "palm", l)
	assert.Equal(t, 1.0, c)
}

func TestReadCSV(t *testing.T) {
	m := New(1)
	n, err := m.ReadCSV(strings.NewReader("0,1,label\n0.1,0.2,0\n0.3,0.4,peace\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"fist", "peace"}, m.Labels())

	// No label column
	_, err = New(1).ReadCSV(strings.NewReader("0,1\n0.1,0.2\n"))
	assert.Error(t, err)

	// Invalid value
	_, err = New(1).ReadCSV(strings.NewReader("0,label\nabc,fist\n"))
	assert.Error(t, err)
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Add([]float64{0.5, 1}, "fist")
	c.Add([]float64{2, 3.25}, "palm")
	c.Add([]float64{0, 1}, "fist")
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, map[string]int{"fist": 2, "palm": 1}, c.Counts())

	// Write
	buf := &bytes.Buffer{}
	require.NoError(t, c.Write(buf))
	assert.Equal(t, "0,1,label\n0.5,1,fist\n2,3.25,palm\n0,1,fist\n", buf.String())

	// Save and load
	dir, err := ioutil.TempDir("", "astiknn")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	p, err := c.Save(dir, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gesture_data_20200102_030405.csv"), p)
	m := New(1)
	require.NoError(t, m.LoadCSVDir(dir))
	assert.Equal(t, 3, m.Len())
}
