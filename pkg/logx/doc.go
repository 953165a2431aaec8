// Package logx is a small structured-logging facade over zerolog.
//
// It exposes:
//   - Logger: cheap value type with With()-style fixed fields
//   - Service: dynamic sink management (console, file, Telegram) that can be
//     re-applied at runtime from config without invalidating held Loggers
//
// The Telegram sink is rate limited and never blocks the caller.
package logx
