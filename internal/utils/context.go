package utils

import "context"

// Value returns the context value under key when it holds a T.
func Value[T any](ctx context.Context, key any) (T, bool) {
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func GetString(ctx context.Context, key any) (string, bool) { return Value[string](ctx, key) }
