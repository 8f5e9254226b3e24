package logger

import "sync"

// named holds loggers registered per client or component name.
var named sync.Map

// Register makes Get(name) return l. Programs use it to route one client's
// logs somewhere other than the global logger.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Unregister removes a logger added with Register.
func Unregister(name string) {
	named.Delete(name)
}

// Get returns the logger registered under name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	if v, ok := named.Load(name); ok {
		return v.(*Logger)
	}
	return Global().WithComponent(name)
}
