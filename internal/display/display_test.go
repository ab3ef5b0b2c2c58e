package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
)

type testScreen map[[2]int]bool

func (s testScreen) Pixel(x, y int) bool {
	return s[[2]int{x, y}]
}

type testKeys map[uint8]bool

func (k testKeys) Key(key uint8) bool {
	return k[key]
}

func disableColor(t *testing.T) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })
}

func TestWriteScreen(t *testing.T) {
	disableColor(t)

	screen := testScreen{{0, 0}: true, {63, 31}: true, {5, 2}: true}

	var buf bytes.Buffer
	assert.NoError(t, New(false).WriteScreen(&buf, screen))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, chip8.DisplayHeight+2)

	edge := "+" + strings.Repeat("-", chip8.DisplayWidth*2) + "+"
	assert.Equal(t, edge, lines[0])
	assert.Equal(t, edge, lines[len(lines)-1])

	assert.True(t, strings.HasPrefix(lines[1], "|██  "))
	assert.True(t, strings.HasSuffix(lines[chip8.DisplayHeight], "  ██|"))
	assert.Equal(t, "|"+strings.Repeat("  ", 5)+"██"+strings.Repeat("  ", 58)+"|", lines[3])
	assert.Equal(t, 3, strings.Count(buf.String(), "██"))
}

func TestWriteScreenBorder(t *testing.T) {
	disableColor(t)

	screen := testScreen{{1, 0}: true}

	var buf bytes.Buffer
	assert.NoError(t, New(true).WriteScreen(&buf, screen))

	lines := strings.Split(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[1], "| .[] ."))
	assert.Equal(t, 1, strings.Count(buf.String(), "[]"))
}

func TestWriteKeypad(t *testing.T) {
	disableColor(t)

	var buf bytes.Buffer
	assert.NoError(t, New(false).WriteKeypad(&buf, testKeys{0x5: true, 0xF: true}))

	expected := " 1(1)   2(2)   3(3)   C(4) \n" +
		" 4(Q)  [5(W)]  6(E)   D(R) \n" +
		" 7(A)   8(S)   9(D)   E(F) \n" +
		" A(Z)   0(X)   B(C)  [F(V)]\n"
	assert.Equal(t, expected, buf.String())
}
