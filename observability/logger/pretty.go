package logger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// prettyEncoder is a custom encoder for development mode that outputs colored,
// human-readable logs with indented JSON for complex objects.
type prettyEncoder struct {
	zapcore.Encoder
	consoleEncoder zapcore.Encoder
	jsonEncoder    zapcore.Encoder
	pool           buffer.Pool
}

// newPrettyEncoder creates a development encoder with color support and JSON indentation.
func newPrettyEncoder(encoderConfig zapcore.EncoderConfig) zapcore.Encoder {
	consoleEnc := zapcore.NewConsoleEncoder(encoderConfig)
	return &prettyEncoder{
		Encoder:        consoleEnc, // embed the console encoder to satisfy the Encoder interface
		consoleEncoder: consoleEnc,
		jsonEncoder:    zapcore.NewJSONEncoder(encoderConfig),
		pool:           buffer.NewPool(),
	}
}

// EncodeEntry formats a log entry with colored levels and pretty-printed fields.
func (e *prettyEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	consoleBuf, err := e.consoleEncoder.EncodeEntry(entry, nil)
	if err != nil {
		return nil, err
	}

	line := e.colorizeLevel(strings.TrimRight(consoleBuf.String(), "\n"), entry.Level)

	if len(fields) > 0 {
		line, err = e.appendFields(line, entry, fields)
		if err != nil {
			return nil, err
		}
	}

	buf := e.pool.Get()
	buf.AppendString(line)
	buf.AppendString("\n")

	return buf, nil
}

// appendFields renders structured fields as indented JSON below the log line.
func (e *prettyEncoder) appendFields(line string, entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	fieldBuf, err := e.jsonEncoder.EncodeEntry(entry, fields)
	if err != nil {
		return "", err
	}

	var fieldsMap map[string]any
	if err := json.Unmarshal(fieldBuf.Bytes(), &fieldsMap); err != nil {
		// Not parseable as JSON, append the raw encoding.
		return line + " " + fieldBuf.String(), nil
	}

	// Drop fields already present in the console prefix.
	for _, k := range []string{messageKey, levelKey, timeKey, callerKey, nameKey} {
		delete(fieldsMap, k)
	}

	if len(fieldsMap) == 0 {
		return line, nil
	}

	prettyJSON, err := json.MarshalIndent(fieldsMap, "", "  ")
	if err != nil {
		return line + " " + fieldBuf.String(), nil
	}

	return line + "\n" + string(prettyJSON), nil
}

// colorizeLevel adds color to the log level based on its severity.
func (e *prettyEncoder) colorizeLevel(line string, level zapcore.Level) string {
	var colorFunc func(a ...any) string

	switch level {
	case zapcore.DebugLevel:
		colorFunc = color.New(color.FgCyan).SprintFunc()
	case zapcore.InfoLevel:
		colorFunc = color.New(color.FgGreen).SprintFunc()
	case zapcore.WarnLevel:
		colorFunc = color.New(color.FgYellow).SprintFunc()
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		colorFunc = color.New(color.FgRed, color.Bold).SprintFunc()
	default:
		colorFunc = func(a ...any) string { return fmt.Sprint(a...) }
	}

	capLevelStr := level.CapitalString()
	if strings.Contains(line, capLevelStr) {
		return strings.Replace(line, capLevelStr, colorFunc(capLevelStr), 1)
	}
	if strings.Contains(line, level.String()) {
		return strings.Replace(line, level.String(), colorFunc(level.String()), 1)
	}

	return line
}
