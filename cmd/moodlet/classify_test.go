package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlet/moodlet-backend/internal/style"
)

func TestParseAnswers(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    style.Answers
		wantErr bool
	}{
		{
			name: "normalizes case and spaces",
			args: []string{"q1=a", " Q2 = b "},
			want: style.Answers{"Q1": "A", "Q2": "B"},
		},
		{
			name: "no answers",
			args: nil,
			want: style.Answers{},
		},
		{
			name:    "missing separator",
			args:    []string{"Q1A"},
			wantErr: true,
		},
		{
			name:    "missing option",
			args:    []string{"Q1="},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnswers(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyCommand_JSON(t *testing.T) {
	cmd := classifyCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json", "Q1=A", "Q2=A", "Q3=A", "Q4=A", "Q5=A", "Q6=A", "Q7=A"})

	require.NoError(t, cmd.Execute())

	var got classifyOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))

	want := style.Classify(style.Answers{"Q1": "A", "Q2": "A", "Q3": "A", "Q4": "A", "Q5": "A", "Q6": "A", "Q7": "A"})
	assert.Equal(t, style.GroupA, got.Group)
	assert.Equal(t, want.Style, got.Style)
	assert.Equal(t, style.Label(want.Style), got.Label)
	assert.Equal(t, want.Scores, got.Scores)
	assert.NotEmpty(t, got.Prompt)
}

func TestClassifyCommand_Text(t *testing.T) {
	cmd := classifyCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"Q1=C", "Q2=C"})

	require.NoError(t, cmd.Execute())

	result := style.Classify(style.Answers{"Q1": "C", "Q2": "C"})
	assert.Contains(t, out.String(), "group: C\n")
	assert.Contains(t, out.String(), "style: "+string(result.Style))
	assert.Contains(t, out.String(), "prompt: ")
}

func TestClassifyCommand_InvalidArgument(t *testing.T) {
	cmd := classifyCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"Q1"})

	assert.Error(t, cmd.Execute())
}
