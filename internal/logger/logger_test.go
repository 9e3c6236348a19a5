package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &ZapLogger{logger: zap.New(core)}

	ctx := WithSource(WithRequestID(context.Background(), "req-1"), "leaf.jpg")
	l.Infof(ctx, "diagnosed %s", "Healthy")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "diagnosed Healthy" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" {
		t.Errorf("request_id = %v", fields["request_id"])
	}
	if fields["source"] != "leaf.jpg" {
		t.Errorf("source = %v", fields["source"])
	}
	if RequestID(ctx) != "req-1" {
		t.Errorf("RequestID(ctx) = %q", RequestID(ctx))
	}
}

func TestNoFieldsWithoutContextValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &ZapLogger{logger: zap.New(core)}

	l.Warnf(context.Background(), "plain")
	if got := len(logs.All()[0].Context); got != 0 {
		t.Errorf("expected no fields, got %d", got)
	}
}
