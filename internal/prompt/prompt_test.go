package prompt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewWithIO(strings.NewReader("My App\n\n"), &out)

	got, err := p.Ask(context.Background(), "Name", "")
	require.NoError(t, err)
	assert.Equal(t, "My App", got)

	got, err = p.Ask(context.Background(), "Redirect URI", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)

	assert.Equal(t, "Name: Redirect URI (https://example.com): ", out.String())
}

func TestAskEOFWithoutNewline(t *testing.T) {
	p := NewWithIO(strings.NewReader("last"), io.Discard)
	got, err := p.Ask(context.Background(), "Name", "")
	require.NoError(t, err)
	assert.Equal(t, "last", got)
}

func TestRequired(t *testing.T) {
	p := NewWithIO(strings.NewReader("\n"), io.Discard)
	_, err := p.Required(context.Background(), "Email")
	assert.ErrorIs(t, err, ErrRequired)
	assert.ErrorContains(t, err, "Email")
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"TRUE\n", false, true},
		{"no\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"whatever\n", true, false},
	}
	for _, c := range cases {
		p := NewWithIO(strings.NewReader(c.input), io.Discard)
		got, err := p.Confirm(context.Background(), "Sure?", c.def)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "input %q default %v", c.input, c.def)
	}
}

func TestConfirmHint(t *testing.T) {
	var out bytes.Buffer
	p := NewWithIO(strings.NewReader("\n\n"), &out)
	_, _ = p.Confirm(context.Background(), "Whitelisted?", true)
	_, _ = p.Confirm(context.Background(), "Can grant?", false)
	assert.Equal(t, "Whitelisted? [Y/n]: Can grant? [y/N]: ", out.String())
}

func TestPasswordConfigured(t *testing.T) {
	p := NewWithIO(strings.NewReader(""), io.Discard)
	got, err := p.Password(context.Background(), "from-env")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestPasswordFromPipe(t *testing.T) {
	p := NewWithIO(strings.NewReader("piped secret\n"), io.Discard)
	got, err := p.Password(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "piped secret", got)
}

func TestPasswordTerminal(t *testing.T) {
	var out bytes.Buffer
	p := &Prompter{
		in:           strings.NewReader(""),
		out:          &out,
		isTerminal:   func() bool { return true },
		readPassword: func() ([]byte, error) { return []byte("typed"), nil },
	}
	got, err := p.Password(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "typed", got)
	assert.Equal(t, "Password: \n", out.String())
}

func TestPasswordTerminalError(t *testing.T) {
	boom := errors.New("tty gone")
	p := &Prompter{
		in:           strings.NewReader(""),
		out:          io.Discard,
		isTerminal:   func() bool { return true },
		readPassword: func() ([]byte, error) { return nil, boom },
	}
	_, err := p.Password(context.Background(), "")
	assert.ErrorIs(t, err, boom)
}

func TestPasswordBlank(t *testing.T) {
	p := NewWithIO(strings.NewReader("\n"), io.Discard)
	_, err := p.Password(context.Background(), "")
	assert.ErrorIs(t, err, ErrRequired)
}

func TestReadLineCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := NewWithIO(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Ask(ctx, "Name", "")
	assert.ErrorIs(t, err, context.Canceled)
}
