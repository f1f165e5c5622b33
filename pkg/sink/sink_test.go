package sink

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/itohio/gotsl/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name string
		s    sample.Sample
		want string
	}{
		{
			name: "positive reading",
			s:    sample.Sample{Elapsed: 1500 * time.Millisecond, Force: 123.45},
			want: "1500,123.4500",
		},
		{
			name: "negative reading",
			s:    sample.Sample{Elapsed: 20 * time.Millisecond, Force: -0.5},
			want: "20,-0.5000",
		},
		{
			name: "zero",
			s:    sample.Sample{},
			want: "0,0.0000",
		},
		{
			name: "sub-millisecond elapsed truncates",
			s:    sample.Sample{Elapsed: 999 * time.Microsecond, Force: 1},
			want: "0,1.0000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLine(tt.s))
		})
	}
}

func TestInit_WritesStartMarker(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	l := New(&diag, dir, "TEST_07.txt")

	ok := l.Init(7)
	assert.True(t, ok)
	assert.True(t, l.Healthy())

	data, err := os.ReadFile(filepath.Join(dir, "TEST_07.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Start of test 7\n", string(data))

	// Healthy init produces no diagnostic noise
	assert.Empty(t, diag.String())
}

func TestInit_FailsWithoutCard(t *testing.T) {
	var diag bytes.Buffer
	l := New(&diag, filepath.Join(t.TempDir(), "missing"), "TEST_01.txt")

	ok := l.Init(1)
	assert.False(t, ok)
	assert.False(t, l.Healthy())
	assert.Contains(t, diag.String(), "SD initialization failed!")
}

func TestLog_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	var diag bytes.Buffer
	l := New(&diag, dir, "TEST_03.txt")
	require.True(t, l.Init(3))

	const n = 25
	for i := 0; i < n; i++ {
		l.Log(sample.Sample{
			Elapsed: time.Duration(i*20) * time.Millisecond,
			Force:   float64(i) * 1.5,
		})
	}

	f, err := os.Open(l.Path())
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)

	require.True(t, scanner.Scan())
	assert.Equal(t, "Start of test 3", scanner.Text())

	count := 0
	lastElapsed := int64(-1)
	for scanner.Scan() {
		elapsed, force := parseDataLine(t, scanner.Text())
		assert.GreaterOrEqual(t, elapsed, int64(0))
		assert.Greater(t, elapsed, lastElapsed, "lines must be in acceptance order")
		assert.InDelta(t, float64(count)*1.5, force, 1e-9)
		lastElapsed = elapsed
		count++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, n, count, "file must contain exactly one line per sample")

	// Diagnostic sink received the same lines, minus the marker
	diagLines := strings.Split(strings.TrimSpace(diag.String()), "\n")
	assert.Len(t, diagLines, n)
}

func TestLog_DurableFailureKeepsDiagnostic(t *testing.T) {
	var diag bytes.Buffer
	l := New(&diag, filepath.Join(t.TempDir(), "missing"), "TEST_01.txt")
	l.Init(1)

	l.Log(sample.Sample{Elapsed: time.Second, Force: 42})

	// Sample dropped from the durable sink only
	_, err := os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, diag.String(), "1000,42.0000")
}

func TestLog_NilDiagnosticSink(t *testing.T) {
	dir := t.TempDir()
	l := New(nil, dir, "TEST_01.txt")
	require.True(t, l.Init(1))

	// Must not panic with an absent diagnostic transport
	l.Log(sample.Sample{Elapsed: time.Second, Force: 1})
}

// TestCrashSafety simulates power loss mid-write: the session file is
// truncated in the middle of its final line, and every previously
// committed line must still parse.
func TestCrashSafety(t *testing.T) {
	dir := t.TempDir()
	l := New(nil, dir, "TEST_09.txt")
	require.True(t, l.Init(9))

	for i := 0; i < 10; i++ {
		l.Log(sample.Sample{Elapsed: time.Duration(i*100) * time.Millisecond, Force: float64(i) + 0.25})
	}

	// Truncate mid-line: chop the last 5 bytes
	info, err := os.Stat(l.Path())
	require.NoError(t, err)
	require.NoError(t, os.Truncate(l.Path(), info.Size()-5))

	f, err := os.Open(l.Path())
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	assert.Equal(t, "Start of test 9", scanner.Text())

	completeLine := regexp.MustCompile(`^\d+,-?\d+\.\d{4}$`)
	complete := 0
	for scanner.Scan() {
		line := scanner.Text()
		if !completeLine.MatchString(line) {
			continue // the torn final line
		}
		parseDataLine(t, line)
		complete++
	}
	assert.GreaterOrEqual(t, complete, 9, "committed lines must survive a torn write")
}

func parseDataLine(t *testing.T, line string) (int64, float64) {
	t.Helper()
	parts := strings.Split(line, ",")
	require.Len(t, parts, 2, "line %q", line)
	elapsed, err := strconv.ParseInt(parts[0], 10, 64)
	require.NoError(t, err, "elapsed in %q", line)
	force, err := strconv.ParseFloat(parts[1], 64)
	require.NoError(t, err, "force in %q", line)
	require.Regexp(t, `^-?\d+\.\d{4}$`, parts[1], "4 decimal places in %q", line)
	return elapsed, force
}
