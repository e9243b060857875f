// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Unikraft GmbH. All rights reserved.

package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"kconf.sh/kconfig"
)

// Server drives the line-delimited JSON protocol over an Engine. It is
// not safe for concurrent use (spec.md §5): one Server serializes all
// requests against its Engine.
type Server struct {
	Engine *kconfig.Engine
	Log    *logrus.Entry

	in  *bufio.Scanner
	out io.Writer
}

// New wraps an already-loaded Engine for serving over in/out.
func New(eng *kconfig.Engine, in io.Reader, out io.Writer, log *logrus.Entry) *Server {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Server{
		Engine: eng,
		Log:    log,
		in:     scanner,
		out:    out,
	}
}

// Hello emits the initial message, the full snapshot of every
// user-settable symbol's state (spec.md §6 "Initial message").
func (s *Server) Hello() error {
	snap := takeSnapshot(s.Engine)
	return s.writeLine(snapToResponse(snap, nil))
}

// Serve reads requests line by line until in is exhausted or an
// unrecoverable I/O error occurs. Each request gets a correlation ID that
// is attached to the debug lines logged while handling it, so IDE
// integrations can match asynchronous diagnostics back to the request (spec.md §6, SPEC_FULL.md §11).
func (s *Server) Serve() error {
	for s.in.Scan() {
		line := s.in.Bytes()
		if len(line) == 0 {
			continue
		}

		reqID := uuid.New().String()
		resp := s.handle(append([]byte(nil), line...), reqID)
		if err := s.writeLine(resp); err != nil {
			return err
		}
	}
	return s.in.Err()
}

func (s *Server) handle(raw []byte, reqID string) Response {
	log := s.Log.WithField("request_id", reqID)

	if err := validateRequest(raw); err != nil {
		log.WithError(err).Debug("rejected malformed request")
		return Response{Error: []string{err.Error()}}
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Response{Error: []string{fmt.Sprintf("invalid JSON: %s", err)}}
	}

	if !versionSupported(req.Version) {
		return Response{Error: []string{fmt.Sprintf(
			"unsupported protocol version %d, supported: %v", req.Version, SupportedVersions)}}
	}

	before := takeSnapshot(s.Engine)
	var errs []string

	if req.Load != nil && *req.Load != "" {
		if _, err := s.Engine.LoadConfig(*req.Load, kconfig.OriginPrimaryConfig); err != nil {
			errs = append(errs, err.Error())
		}
	}

	for name, v := range req.Set {
		if err := s.Engine.Set(name, rawValue(v)); err != nil {
			errs = append(errs, err.Error())
			log.WithField("symbol", name).Debug("set on unknown symbol")
		}
	}

	if len(req.Reset) == 1 && req.Reset[0] == "all" {
		s.Engine.Reset()
	} else if len(req.Reset) > 0 {
		s.Engine.Reset(req.Reset...)
	}

	if req.Save != nil && *req.Save != "" {
		if err := s.Engine.SaveConfig(*req.Save); err != nil {
			errs = append(errs, err.Error())
		}
	}

	after := takeSnapshot(s.Engine)
	resp := snapToResponse(diffSnapshot(before, after), errs)
	return resp
}

func (s *Server) writeLine(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	data = append(data, '\n')
	_, err = s.out.Write(data)
	return err
}

func snapToResponse(snap snapshot, errs []string) Response {
	resp := Response{Error: errs}
	if len(snap.ranges) > 0 {
		resp.Ranges = snap.ranges
	}
	if len(snap.visible) > 0 {
		resp.Visible = snap.visible
	}
	if len(snap.values) > 0 {
		resp.Values = snap.values
	}
	if len(snap.defaults) > 0 {
		resp.Defaults = snap.defaults
	}
	if len(snap.warnings) > 0 {
		resp.Warnings = snap.warnings
	}
	return resp
}

// diffSnapshot keeps only the entries that changed between before and
// after, per spec.md §6 "Responses carry only changed... fields".
func diffSnapshot(before, after snapshot) snapshot {
	out := snapshot{
		ranges:   make(map[string][2]interface{}),
		visible:  make(map[string]bool),
		values:   make(map[string]interface{}),
		defaults: make(map[string]bool),
		warnings: make(map[string]string),
	}

	for loc, msg := range after.warnings {
		if bm, ok := before.warnings[loc]; !ok || bm != msg {
			out.warnings[loc] = msg
		}
	}

	for name, v := range after.visible {
		if bv, ok := before.visible[name]; !ok || bv != v {
			out.visible[name] = v
		}
	}
	for name, v := range after.values {
		if bv, ok := before.values[name]; !ok || bv != v {
			out.values[name] = v
		}
	}
	for name, v := range after.defaults {
		if bv, ok := before.defaults[name]; !ok || bv != v {
			out.defaults[name] = v
		}
	}
	for name, v := range after.ranges {
		if bv, ok := before.ranges[name]; !ok || bv != v {
			out.ranges[name] = v
		}
	}

	return out
}
