package chanselect

import (
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLogifaceEvent is a minimal Event implementation, grounded on
// logiface's own mockSimpleEvent test fixture, just enough to exercise the
// adapter's field-writing path.
type fakeLogifaceEvent struct {
	logiface.UnimplementedEvent
	level   logiface.Level
	fields  map[string]any
	message string
}

func (e *fakeLogifaceEvent) Level() logiface.Level { return e.level }

func (e *fakeLogifaceEvent) AddField(key string, val any) {
	if e.fields == nil {
		e.fields = make(map[string]any)
	}
	e.fields[key] = val
}

func (e *fakeLogifaceEvent) AddMessage(msg string) bool {
	e.message = msg
	return true
}

func (e *fakeLogifaceEvent) AddError(err error) bool {
	e.fields["err"] = err
	return true
}

func newFakeLogifaceLogger(t *testing.T, minLevel logiface.Level) (*logiface.Logger[*fakeLogifaceEvent], *[]*fakeLogifaceEvent) {
	t.Helper()
	var captured []*fakeLogifaceEvent
	factory := logiface.LoggerFactory[*fakeLogifaceEvent]{}
	l := factory.New(
		logiface.WithLevel[*fakeLogifaceEvent](minLevel),
		logiface.WithEventFactory[*fakeLogifaceEvent](logiface.NewEventFactoryFunc(func(level logiface.Level) *fakeLogifaceEvent {
			return &fakeLogifaceEvent{level: level}
		})),
		logiface.WithWriter[*fakeLogifaceEvent](logiface.NewWriterFunc(func(e *fakeLogifaceEvent) error {
			captured = append(captured, e)
			return nil
		})),
	)
	require.NotNil(t, l)
	return l, &captured
}

func TestLogifaceLogger_LogWritesFieldsAndMessage(t *testing.T) {
	l, captured := newFakeLogifaceLogger(t, logiface.LevelDebug)
	adapter := NewLogifaceLogger[*fakeLogifaceEvent](l)

	require.True(t, adapter.IsEnabled(LevelInfo))
	adapter.Log(LogEntry{
		Level:       LevelInfo,
		Category:    "phase",
		SelectionID: 7,
		CaseID:      "send(0x1)",
		Phase:       "Try",
		Message:     "entering Try",
	})

	require.Len(t, *captured, 1)
	e := (*captured)[0]
	assert.Equal(t, "entering Try", e.message)
	assert.Equal(t, "phase", e.fields["category"])
	assert.Equal(t, int64(7), e.fields["selection"])
	assert.Equal(t, "Try", e.fields["phase"])
	assert.Equal(t, "send(0x1)", e.fields["case"])
}

func TestLogifaceLogger_IsEnabledRespectsConfiguredLevel(t *testing.T) {
	l, _ := newFakeLogifaceLogger(t, logiface.LevelInformational)
	adapter := NewLogifaceLogger[*fakeLogifaceEvent](l)

	assert.True(t, adapter.IsEnabled(LevelInfo))
	assert.False(t, adapter.IsEnabled(LevelDebug), "debug is more verbose than the configured informational threshold")
}

func TestLogifaceLogger_NilLoggerIsDisabled(t *testing.T) {
	adapter := NewLogifaceLogger[*fakeLogifaceEvent](nil)
	assert.False(t, adapter.IsEnabled(LevelInfo))
	assert.NotPanics(t, func() { adapter.Log(LogEntry{Level: LevelInfo}) })
}
