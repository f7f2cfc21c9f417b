// Package guard provides route guards for applications embedding a
// goSession [github.com/fraudlens/goSession.Session].
//
// Guards only read the session's authentication flag; they never see the
// retry or single-flight mechanics underneath it.
package guard
