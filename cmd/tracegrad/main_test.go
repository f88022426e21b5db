package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Commands(t *testing.T) {
	var out, errOut bytes.Buffer

	assert.Equal(t, 0, run([]string{"version"}, &out, &errOut))
	assert.Contains(t, out.String(), version)

	out.Reset()
	assert.Equal(t, 0, run([]string{"list"}, &out, &errOut))
	for name := range demos {
		assert.Contains(t, out.String(), name)
	}

	assert.Equal(t, 2, run([]string{"bogus"}, &out, &errOut))
	assert.Equal(t, 2, run([]string{"run", "bogus"}, &out, &errOut))
	assert.Equal(t, 2, run([]string{"run"}, &out, &errOut))
}

func TestRun_EveryDemo(t *testing.T) {
	for name := range demos {
		t.Run(name, func(t *testing.T) {
			for _, flags := range [][]string{nil, {"-f64"}, {"-json"}} {
				var out, errOut bytes.Buffer
				args := append([]string{"run"}, flags...)
				code := run(append(args, name), &out, &errOut)
				require.Equal(t, 0, code, errOut.String())
				assert.Contains(t, out.String(), "== grad 1 ==")
			}
		})
	}
}

func TestRun_SquareSecondDerivative(t *testing.T) {
	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"run", "-f64", "square"}, &out, &errOut))

	text := out.String()
	assert.Contains(t, text, "out[0] = float64()[34]")
	assert.Contains(t, text, "out[0] = float64(2)[6 10]")
	assert.Contains(t, text, "out[0] = float64(2)[2 2]")
}

func TestRun_VerboseLogs(t *testing.T) {
	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"run", "-v", "mul"}, &out, &errOut))
	assert.True(t, strings.Contains(errOut.String(), "msg=grad"), errOut.String())
}
