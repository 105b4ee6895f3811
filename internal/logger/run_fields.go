package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRoleID is the structured log field key for the role identifier.
	FieldRoleID = "role_id"
	// FieldJDHash is the structured log field key for the job-description hash.
	FieldJDHash = "jd_hash"
	// FieldRunID is the structured log field key for the evaluation run id.
	FieldRunID = "run_id"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// RunFields returns the standard fields identifying one evaluation run.
// Empty values are ignored to keep log entries compact when information is missing.
func RunFields(roleID, jdHash, runID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldRoleID, Value: roleID},
		StringField{Key: FieldJDHash, Value: jdHash},
		StringField{Key: FieldRunID, Value: runID},
	)
}

// WithRunFields attaches the run identity fields to the provided logger.
// If the logger is nil, a no-op logger is created to avoid panics.
func WithRunFields(logger *zap.Logger, roleID, jdHash, runID string) *zap.Logger {
	return WithFields(logger, RunFields(roleID, jdHash, runID)...)
}
