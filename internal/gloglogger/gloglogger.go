// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package gloglogger adapts github.com/aristanetworks/glog to the
// semisort.Logger seam, the way goarista/glog adapts it to
// goarista/logger.Logger.
package gloglogger

import "github.com/aristanetworks/glog"

// Glog implements semisort.Logger on top of glog.
type Glog struct {
	// InfoLevel gates Infof behind glog.V(InfoLevel); default 0.
	InfoLevel glog.Level
}

// Infof logs at the info level, gated by InfoLevel's verbosity.
func (g *Glog) Infof(format string, args ...interface{}) {
	glog.V(g.InfoLevel).Infof(format, args...)
}

// Errorf logs at the error level.
func (g *Glog) Errorf(format string, args ...interface{}) {
	glog.Errorf(format, args...)
}
