package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoResponder struct {
	sessions []string
}

func (e *echoResponder) Respond(_ context.Context, session, input string) string {
	e.sessions = append(e.sessions, session)
	return "you said " + input
}

func TestRunREPL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLines []string
		wantCalls int
		goodbye   bool
	}{
		{
			name:      "exit ends the loop",
			input:     "hello\nEXIT\nnever read\n",
			wantLines: []string{"Jarvis: you said hello"},
			wantCalls: 1,
			goodbye:   true,
		},
		{
			name:      "blank lines are skipped",
			input:     "\n   \nhi\nexit\n",
			wantLines: []string{"Jarvis: you said hi"},
			wantCalls: 1,
			goodbye:   true,
		},
		{
			name:      "end of input",
			input:     "one\ntwo",
			wantLines: []string{"Jarvis: you said one", "Jarvis: you said two"},
			wantCalls: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responder := &echoResponder{}
			var out bytes.Buffer

			err := runREPL(context.Background(), strings.NewReader(tt.input), &out, responder, "session-1")
			require.NoError(t, err)

			assert.Contains(t, out.String(), chatBanner)
			for _, line := range tt.wantLines {
				assert.Contains(t, out.String(), line)
			}
			assert.Len(t, responder.sessions, tt.wantCalls)
			for _, s := range responder.sessions {
				assert.Equal(t, "session-1", s)
			}
			assert.Equal(t, tt.goodbye, strings.Contains(out.String(), chatGoodbye))
		})
	}
}
