// Package state defines shared program state.
package state

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cluehtml/pkg/config"
	"cluehtml/pkg/images"
	"cluehtml/pkg/page"
	"cluehtml/pkg/resource"
	"cluehtml/pkg/text"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg    *config.Config
	Log    *zap.Logger
	Fonts  *text.Cache
	Images *images.Cache

	start         time.Time
	restoreStdLog func()
}

func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Prepare builds the logger, the font cache and the image cache from cfg.
func (e *LocalEnv) Prepare(cfg *config.Config, debug bool) (err error) {
	e.Cfg = cfg
	if e.Log, err = cfg.Logging.Prepare(debug); err != nil {
		return fmt.Errorf("unable to prepare logs: %w", err)
	}
	e.Fonts = text.NewCache(cfg.Fonts, e.Log)
	e.Images = images.NewCache(resource.NewFetcher(""), cfg.Images, e.Log)
	return nil
}

// PageOptions converts the configuration into loader options.
func (e *LocalEnv) PageOptions() page.Options {
	o := page.DefaultOptions()
	if e.Cfg == nil {
		return o
	}
	o.Charset = e.Cfg.Document.Charset
	o.LineBreak = e.Cfg.Document.LineBreak
	o.MaxQueued = e.Cfg.Tokenizer.MaxQueued
	o.Document = e.Cfg.Document.Options()
	return o
}

// Loader returns a page loader sharing the environment's caches.
func (e *LocalEnv) Loader() *page.Loader {
	return page.NewLoader(e.Fonts, e.Images, e.PageOptions(), e.Log)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

// Close releases what Prepare built. The logger is synced last so that
// teardown problems are still logged.
func (e *LocalEnv) Close() (err error) {
	if e.Images != nil {
		err = multierr.Append(err, e.Images.Close())
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}
	if e.Log != nil {
		if er := e.Log.Sync(); er != nil && !isSyncNoise(er) {
			err = multierr.Append(err, fmt.Errorf("unable to sync log: %w", er))
		}
	}
	return err
}

// isSyncNoise reports errors returned when syncing a terminal or a pipe.
func isSyncNoise(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF)
}
