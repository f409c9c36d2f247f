package actions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecognizedActions(t *testing.T) {
	tests := []struct {
		step string
		want Action
	}{
		{"click at (10, 20)", Action{Kind: KindClick, X: 10, Y: 20}},
		{"Click on (300,400)", Action{Kind: KindClick, X: 300, Y: 400}},
		{"click 5, 6", Action{Kind: KindClick, X: 5, Y: 6}},
		{"double click at (5,5)", Action{Kind: KindDoubleClick, X: 5, Y: 5}},
		{"Double Click on (7, 8)", Action{Kind: KindDoubleClick, X: 7, Y: 8}},
		{"right click at (1, 2)", Action{Kind: KindRightClick, X: 1, Y: 2}},
		{`type "Hello World"`, Action{Kind: KindType, Text: "Hello World"}},
		{"Type hello there", Action{Kind: KindType, Text: "hello there"}},
		{"press Enter", Action{Kind: KindPress, Key: "enter"}},
		{"hotkey ctrl+shift+T", Action{Kind: KindHotkey, Keys: []string{"ctrl", "shift", "t"}}},
		{"hotkey alt + tab", Action{Kind: KindHotkey, Keys: []string{"alt", "tab"}}},
		{"open Firefox", Action{Kind: KindOpen, App: "Firefox"}},
		{"wait for 3 seconds", Action{Kind: KindWait, Seconds: 3}},
		{"Wait for 1 second", Action{Kind: KindWait, Seconds: 1}},
		{"scroll up 5", Action{Kind: KindScroll, Amount: 5}},
		{"scroll down 7", Action{Kind: KindScroll, Amount: -7}},
		{"drag from (1, 2) to (30, 40)", Action{Kind: KindDrag, X: 1, Y: 2, X2: 30, Y2: 40}},
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			got, err := Parse(tt.step)
			require.NoError(t, err)
			tt.want.Step = tt.step
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDoubleClickNeverClassifiesAsClick(t *testing.T) {
	a, err := Parse("double click at (5,5)")
	require.NoError(t, err)
	assert.Equal(t, KindDoubleClick, a.Kind)

	a, err = Parse("right click at (5,5)")
	require.NoError(t, err)
	assert.Equal(t, KindRightClick, a.Kind)
}

func TestParseFailuresAreKindSpecific(t *testing.T) {
	tests := []struct {
		step string
		kind Kind
	}{
		{"click the OK button", KindClick},
		{"double click the icon", KindDoubleClick},
		{"press", KindPress},
		{"hotkey", KindHotkey},
		{"open", KindOpen},
		{"wait a moment", KindWait},
		{"scroll sideways 3", KindScroll},
		{"drag the window", KindDrag},
		{"click at (99999999999999999999, 5)", KindClick},
		{"drag from (1, 2) to (3, 99999999999999999999)", KindDrag},
		{"scroll down 99999999999999999999", KindScroll},
		{"wait for 99999999999999999999 seconds", KindWait},
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			a, err := Parse(tt.step)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnparsable))

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.kind, a.Kind)
		})
	}
}

func TestParseUnknown(t *testing.T) {
	a, err := Parse("Look at the screen carefully")
	assert.ErrorIs(t, err, ErrUnrecognized)
	assert.Equal(t, KindUnknown, a.Kind)
}

func TestParseTriggerPriorityForOverlaps(t *testing.T) {
	// "type" is checked before "press", so a step mentioning both is a type.
	a, err := Parse(`type "press me"`)
	require.NoError(t, err)
	assert.Equal(t, KindType, a.Kind)
	assert.Equal(t, "press me", a.Text)

	// "click" wins over "open" when both appear.
	a, err = Parse("click at (1, 1) to open the menu")
	require.NoError(t, err)
	assert.Equal(t, KindClick, a.Kind)
}
