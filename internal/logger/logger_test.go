package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormLogWriter_Levels(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []interface{}
		level  string
	}{
		{"error line", "%s\n[error] failed to connect", []interface{}{"db.go:40"}, "error"},
		{"warn line", "%s\n[warn] deprecated", []interface{}{"db.go:40"}, "warn"},
		{"failed query", "%s %s\n[%.3fms] [rows:%v] %s",
			[]interface{}{"repo.go:12", errors.New("duplicate key"), 1.2, int64(0), "INSERT ..."}, "error"},
		{"slow query", "%s %s\n[%.3fms] [rows:%v] %s",
			[]interface{}{"repo.go:12", "SLOW SQL >= 1s", 1200.0, int64(3), "SELECT ..."}, "warn"},
		{"trace", "%s\n[%.3fms] [rows:%v] %s",
			[]interface{}{"repo.go:12", 0.4, int64(1), "SELECT 1"}, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := GormLogWriter{l: zerolog.New(&buf)}

			w.Printf(tt.format, tt.args...)

			var line map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.level, line["level"])
			assert.Equal(t, "gorm", line["component"])
		})
	}
}

func TestGormLogWriter_ErrorsPassInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	w := GormLogWriter{l: zerolog.New(&buf).Level(zerolog.InfoLevel)}

	w.Printf("%s\n[%.3fms] [rows:%v] %s", "repo.go:12", 0.4, int64(1), "SELECT 1")
	assert.Zero(t, buf.Len())

	w.Printf("%s %s\n[%.3fms] [rows:%v] %s", "repo.go:12", errors.New("boom"), 0.4, int64(0), "SELECT 1")
	assert.Contains(t, buf.String(), `"level":"error"`)
}
