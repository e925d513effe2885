package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.viam.com/test"
)

func TestLevelStrings(t *testing.T) {
	for _, level := range []Level{DEBUG, INFO, WARN, ERROR} {
		serialized := level.String()
		parsed, err := LevelFromString(serialized)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, level)
	}

	parsed, err := LevelFromString("warning")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, parsed, test.ShouldEqual, WARN)

	_, err = LevelFromString("not a level")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLevelJSONRoundTrip(t *testing.T) {
	type allLevels struct {
		Debug Level
		Info  Level
		Warn  Level
		Error Level
	}
	levels := allLevels{DEBUG, INFO, WARN, ERROR}

	serialized, err := json.Marshal(levels)
	test.That(t, err, test.ShouldBeNil)

	var parsed allLevels
	test.That(t, json.Unmarshal(serialized, &parsed), test.ShouldBeNil)
	test.That(t, parsed, test.ShouldResemble, levels)
}

func TestNewWritesToAppender(t *testing.T) {
	var buf bytes.Buffer
	logger := New(DEBUG, NewWriterAppender(&buf))
	logger.Infof("hello %s", "world")
	test.That(t, buf.Len(), test.ShouldBeGreaterThan, 0)
}

func TestNamedAndWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(DEBUG, NewWriterAppender(&buf)).Named("engine").With("step", 3)
	logger.Warnf("dropped node")
	test.That(t, buf.Len(), test.ShouldBeGreaterThan, 0)
}
