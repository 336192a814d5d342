package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field aliases zap.Field so callers build structured entries without
// importing zap themselves.
type Field = zap.Field

func String(key, val string) Field { return zap.String(key, val) }

func Strings(key string, val []string) Field { return zap.Strings(key, val) }

func Int(key string, val int) Field { return zap.Int(key, val) }

func Int64(key string, val int64) Field { return zap.Int64(key, val) }

func Uint32(key string, val uint32) Field { return zap.Uint32(key, val) }

func Float64(key string, val float64) Field { return zap.Float64(key, val) }

func Bool(key string, val bool) Field { return zap.Bool(key, val) }

func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }

func Time(key string, val time.Time) Field { return zap.Time(key, val) }

func Any(key string, val interface{}) Field { return zap.Any(key, val) }

// Err records err under the standard "error" key.
func Err(err error) Field { return zap.Error(err) }

// ErrorField is Err under the name some call sites prefer.
func ErrorField(err error) Field { return zap.Error(err) }
