package utils

import (
	"context"
	"net/url"

	"github.com/airenas/nercrf/internal/pkg/cmdapp"
)

//URLToLog removes pass from URL
func URLToLog(link string) string {
	u, err := url.Parse(link)
	if err == nil {
		if u.User != nil {
			if _, ok := u.User.Password(); ok {
				u.User = url.UserPassword(u.User.Username(), "----")
			}
		}
		return u.String()
	}
	cmdapp.Log.Warn("Can't parse url.")
	return ""
}

//ContextOnSignal returns context canceled on the first signal or channel close
func ContextOnSignal(parent context.Context, mc *MultiCloseChannel) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case _, ok := <-mc.C:
			if ok {
				cmdapp.Log.Info("Got exit signal")
			}
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
