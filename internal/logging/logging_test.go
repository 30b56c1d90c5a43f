package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	eventbus "github.com/graphmount/graphmount/internal/eventbus"
	events "github.com/graphmount/graphmount/internal/events"
	logging "github.com/graphmount/graphmount/internal/logging"
)

func TestSetupLevelFallback(t *testing.T) {
	logger := logging.Setup(new(bytes.Buffer), "not-a-level")
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", logger.GetLevel())
	}
}

func TestRequestLogging(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var buf bytes.Buffer
	logging.Setup(&buf, "info")

	eventbus.Publish(context.Background(), events.HTTPFinish{
		Adapter:  "test",
		Method:   "POST",
		Path:     "/graphql",
		Status:   200,
		Duration: time.Millisecond,
	})

	out := buf.String()
	if !strings.Contains(out, "request served") {
		t.Errorf("log output %q missing request line", out)
	}
	if !strings.Contains(out, `"adapter":"test"`) {
		t.Errorf("log output %q missing adapter field", out)
	}
}

func TestOperationErrorsLogAtWarn(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var buf bytes.Buffer
	logging.Setup(&buf, "warn")

	eventbus.Publish(context.Background(), events.GraphQLFinish{
		OperationType: "query",
		Errors:        []error{context.Canceled},
		Duration:      time.Millisecond,
	})

	out := buf.String()
	if !strings.Contains(out, "operation executed") {
		t.Errorf("log output %q missing operation line", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("log output %q not at warn level", out)
	}
}

func TestDrainLogging(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var buf bytes.Buffer
	logging.Setup(&buf, "info")

	eventbus.Publish(context.Background(), events.DrainHookDone{Name: "http", Duration: time.Millisecond})
	eventbus.Publish(context.Background(), events.DrainFinish{Duration: 2 * time.Millisecond})

	out := buf.String()
	if !strings.Contains(out, "drain hook finished") || !strings.Contains(out, "drain complete") {
		t.Errorf("log output %q missing drain lines", out)
	}
}
