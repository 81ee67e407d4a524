package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component field helpers for common component names
func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

// Command records the engine command being sent (trimmed for log size)
func Command(cmd string) Field {
	const maxLen = 200
	if len(cmd) > maxLen {
		cmd = cmd[:maxLen] + "..."
	}
	return String("command", cmd)
}

// Node records an engine node path
func Node(path string) Field {
	return String("node", path)
}

// NodeName records a human-readable node name
func NodeName(name string) Field {
	return String("node_name", name)
}

// Session records the session identifier
func Session(id string) Field {
	return String("session", id)
}

// Bytes records a payload size
func Bytes(key string, n int) Field {
	return Int(key, n)
}
