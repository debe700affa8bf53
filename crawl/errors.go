package crawl

import "fmt"

// ConfigError marks invalid CLI/option combinations: unparseable
// status ranges, a missing seed source, and the like. It is the only
// error kind that terminates the whole process.
type ConfigError struct{ Msg string }

func (e *ConfigError) Error() string { return "config: " + e.Msg }

// PoolError wraps a panic or error raised by a task function running
// inside the worker pool. It is delivered to the caller via the
// task's Handle, never as a direct return from Submit.
type PoolError struct{ Err error }

func (e *PoolError) Error() string { return fmt.Sprintf("pool: task failed: %v", e.Err) }
func (e *PoolError) Unwrap() error { return e.Err }

// FileScanError marks a local-scan target that is missing or not a
// regular file. Fatal to the local-scan run.
type FileScanError struct{ Msg string }

func (e *FileScanError) Error() string { return "filescan: " + e.Msg }

// CrawlerError wraps anything unexpected inside the engine's
// scheduling loop and causes the engine to shut down.
type CrawlerError struct{ Err error }

func (e *CrawlerError) Error() string { return fmt.Sprintf("crawler: unexpected error: %v", e.Err) }
func (e *CrawlerError) Unwrap() error { return e.Err }
