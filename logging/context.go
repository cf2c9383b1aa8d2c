package logging

import (
	"context"

	"go.viam.com/utils"
)

type debugKeyType struct{}

// EnableDebugMode returns a context under which CDebugw logs regardless of the logger's level.
// Entries logged that way carry key in a "debug_key" field; an empty key is replaced by a random
// one.
func EnableDebugMode(ctx context.Context, key string) context.Context {
	if key == "" {
		key = utils.RandomAlphaString(6)
	}
	return context.WithValue(ctx, debugKeyType{}, key)
}

// DebugKey returns the key given to EnableDebugMode, or "" if ctx is not in debug mode.
func DebugKey(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	key, _ := ctx.Value(debugKeyType{}).(string)
	return key
}
