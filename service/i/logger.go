package i

// Logger is the leveled logger services write to.
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)

	// With returns a logger that tags every line with key=value.
	With(key string, value any) Logger
}
